// Package models defines data structures shared by the engine orchestration packages.
package models

// EngineDescriptor represents a located engine installation.
type EngineDescriptor struct {
	// MotoresDir is the resolved "motores" directory.
	MotoresDir string `json:"motores_dir"`
	// Dir is the engine directory inside MotoresDir.
	Dir string `json:"dir"`
	// Binary is the compiled executable path (empty if absent).
	Binary string `json:"binary,omitempty"`
	// Script is the script path (empty if absent).
	Script string `json:"script,omitempty"`
	// UseBinary reports whether Binary is the usable entry point.
	UseBinary bool `json:"use_binary"`
}

// Entry returns the path that will be executed or interpreted.
func (d EngineDescriptor) Entry() string {
	if d.UseBinary {
		return d.Binary
	}
	return d.Script
}
