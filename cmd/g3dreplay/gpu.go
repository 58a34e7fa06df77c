//go:build !nogpu

package main

import "github.com/gogpu/g3d/driver/wgpu"

func init() {
	drivers = append(drivers, wgpu.New())
}
