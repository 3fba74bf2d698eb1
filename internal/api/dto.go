package api

import (
	"github.com/samcharles93/nnkern/internal/cpuinfo"
	"github.com/samcharles93/nnkern/internal/model"
	"github.com/samcharles93/nnkern/internal/version"
)

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ModelList struct {
	Object string             `json:"object"`
	Data   []model.Descriptor `json:"data"`
}

type ModelInfo struct {
	model.Descriptor
	WeightCount int             `json:"weight_count"`
	Layout      []model.Section `json:"layout"`
	Stats       model.Stats     `json:"stats"`
}

type ForwardRequest struct {
	Inputs       [][]float32 `json:"inputs"`
	OutputStride int         `json:"output_stride,omitempty"`
}

type ForwardResponse struct {
	ID      string      `json:"id"`
	Model   string      `json:"model"`
	Outputs [][]float32 `json:"outputs"`
}

type CreateSessionRequest struct {
	Model string `json:"model"`
	Batch int    `json:"batch"`
}

type SessionResponse struct {
	ID        string      `json:"id"`
	Model     string      `json:"model"`
	Kind      model.Kind  `json:"kind"`
	Batch     int         `json:"batch"`
	Hidden    int         `json:"hidden"`
	Steps     int         `json:"steps"`
	CreatedAt int64       `json:"created_at"`
	H         [][]float32 `json:"h"`
	C         [][]float32 `json:"c,omitempty"`
}

type StepRequest struct {
	Inputs [][]float32 `json:"inputs"`
}

type StepResponse struct {
	ID   string      `json:"id"`
	Step int         `json:"step"`
	H    [][]float32 `json:"h"`
	C    [][]float32 `json:"c,omitempty"`
	Z    [][]float32 `json:"z,omitempty"`
	R    [][]float32 `json:"r,omitempty"`
}

type SystemResponse struct {
	Version version.Info     `json:"version"`
	CPU     cpuinfo.Features `json:"cpu"`
	DotPath string           `json:"dot_path"`
}
