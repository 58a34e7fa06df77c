package gfx

// ParameterClass is the shape of an effect parameter.
type ParameterClass int32

const (
	ParameterScalar ParameterClass = iota
	ParameterVector
	ParameterMatrixRows
	ParameterMatrixColumns
	ParameterObject
	ParameterStruct
)

// ParameterType is the element type of an effect parameter.
type ParameterType int32

const (
	ParameterVoid ParameterType = iota
	ParameterBool
	ParameterInt
	ParameterFloat
	ParameterString
	ParameterTexture
	ParameterSampler
)

// EffectParameter is one named value of an effect. Values holds the raw
// little-endian contents the backend reads when a pass is applied; the
// application mutates it directly, outside the device API.
type EffectParameter struct {
	Name     string
	Semantic string
	Class    ParameterClass
	Type     ParameterType
	Rows     int32
	Columns  int32
	Elements int32
	Values   []byte
}

// EffectTechnique is a named set of passes.
type EffectTechnique struct {
	Name   string
	Passes []string
}

// EffectData is the parameter and technique blob of a compiled effect.
// It is shared between the application and the backend: parameter writes
// happen here and become visible to the backend on the next ApplyEffect.
type EffectData struct {
	Parameters       []*EffectParameter
	Techniques       []EffectTechnique
	CurrentTechnique int32
}

// Parameter returns the parameter with the given name, or nil.
func (e *EffectData) Parameter(name string) *EffectParameter {
	if e == nil {
		return nil
	}
	for _, p := range e.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Clone returns a deep copy, used by CloneEffect.
func (e *EffectData) Clone() *EffectData {
	if e == nil {
		return nil
	}
	c := &EffectData{
		Parameters:       make([]*EffectParameter, len(e.Parameters)),
		Techniques:       make([]EffectTechnique, len(e.Techniques)),
		CurrentTechnique: e.CurrentTechnique,
	}
	for i, p := range e.Parameters {
		cp := *p
		cp.Values = append([]byte(nil), p.Values...)
		c.Parameters[i] = &cp
	}
	for i, t := range e.Techniques {
		c.Techniques[i] = EffectTechnique{Name: t.Name, Passes: append([]string(nil), t.Passes...)}
	}
	return c
}

// ParameterValues returns a snapshot of every parameter's current contents,
// in declaration order.
func (e *EffectData) ParameterValues() [][]byte {
	if e == nil {
		return nil
	}
	vals := make([][]byte, len(e.Parameters))
	for i, p := range e.Parameters {
		vals[i] = append([]byte(nil), p.Values...)
	}
	return vals
}

// LoadParameterValues overwrites parameter contents with vals, in
// declaration order. Extra values are ignored; values whose length differs
// from the parameter's storage replace it.
func (e *EffectData) LoadParameterValues(vals [][]byte) {
	if e == nil {
		return
	}
	for i, v := range vals {
		if i >= len(e.Parameters) {
			return
		}
		p := e.Parameters[i]
		if len(p.Values) == len(v) {
			copy(p.Values, v)
		} else {
			p.Values = append([]byte(nil), v...)
		}
	}
}
