package software

import (
	"errors"
	"fmt"

	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
)

// ErrNotEffect is returned by CloneEffect for objects of another backend.
var ErrNotEffect = errors.New("software: not a software effect")

// Effect is a reflected effect and its parameter blob.
type Effect struct {
	code    []byte
	data    *gfx.EffectData
	applied [][]byte
	passes  int
	saved   *passState

	// Backend is reserved for the renderer's Mirror.
	Backend any
}

// Code returns the effect source the effect was created from.
func (e *Effect) Code() []byte { return e.code }

// Data returns the parameter blob shared with the device layer.
func (e *Effect) Data() *gfx.EffectData { return e.data }

// Applied returns the parameter values seen by the most recent ApplyEffect.
func (e *Effect) Applied() [][]byte { return e.applied }

// Passes returns the number of passes applied.
func (e *Effect) Passes() int { return e.passes }

func (r *Renderer) CreateEffect(code []byte) (driver.Effect, *gfx.EffectData, error) {
	data, err := r.reflect(code)
	if err != nil {
		return nil, nil, fmt.Errorf("software: reflect effect: %w", err)
	}
	e := &Effect{code: append([]byte(nil), code...), data: data}
	if err := r.mirrorEffect(e); err != nil {
		return nil, nil, err
	}
	return e, data, nil
}

func (r *Renderer) CloneEffect(src driver.Effect) (driver.Effect, *gfx.EffectData, error) {
	s, ok := src.(*Effect)
	if !ok {
		return nil, nil, ErrNotEffect
	}
	e := &Effect{code: s.code, data: s.data.Clone()}
	if err := r.mirrorEffect(e); err != nil {
		return nil, nil, err
	}
	return e, e.data, nil
}

func (r *Renderer) mirrorEffect(e *Effect) error {
	if r.mirror == nil {
		return nil
	}
	if err := r.mirror.EffectCreated(e); err != nil {
		return fmt.Errorf("software: effect mirror: %w", err)
	}
	return nil
}

func (r *Renderer) DisposeEffect(eff driver.Effect) {
	e, ok := eff.(*Effect)
	if !ok {
		return
	}
	if r.mirror != nil {
		r.mirror.EffectDisposed(e)
	}
	e.data, e.applied, e.saved = nil, nil, nil
}

func (r *Renderer) SetEffectTechnique(eff driver.Effect, technique int32) {
	e, ok := eff.(*Effect)
	if !ok || e.data == nil {
		return
	}
	if technique < 0 || int(technique) >= len(e.data.Techniques) {
		r.log.Warn("software: technique out of range", "technique", technique, "count", len(e.data.Techniques))
		return
	}
	e.data.CurrentTechnique = technique
}

// ApplyEffect snapshots the parameter values for the pass.
func (r *Renderer) ApplyEffect(eff driver.Effect, pass uint32) {
	e, ok := eff.(*Effect)
	if !ok || e.data == nil {
		return
	}
	if t := e.data.CurrentTechnique; int(t) < len(e.data.Techniques) {
		if n := len(e.data.Techniques[t].Passes); int(pass) >= n {
			r.log.Warn("software: pass out of range", "pass", pass, "count", n)
			return
		}
	}
	e.applied = e.data.ParameterValues()
	e.passes++
}

// BeginPassRestore saves the pipeline state a pass may change.
func (r *Renderer) BeginPassRestore(eff driver.Effect) {
	if e, ok := eff.(*Effect); ok {
		saved := r.pass
		e.saved = &saved
	}
}

func (r *Renderer) EndPassRestore(eff driver.Effect) {
	e, ok := eff.(*Effect)
	if !ok || e.saved == nil {
		return
	}
	r.pass = *e.saved
	e.saved = nil
}
