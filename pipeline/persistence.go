package pipeline

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// SavePipeline writes a pipeline to a file with gob. Fitted state, learned
// component fields and the decision threshold are all preserved.
func SavePipeline(p *Pipeline, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return SavePipelineToWriter(p, file)
}

// LoadPipeline reads a pipeline saved by SavePipeline.
func LoadPipeline(filename string) (*Pipeline, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadPipelineFromReader(file)
}

// SavePipelineToWriter writes a pipeline to w with gob.
func SavePipelineToWriter(p *Pipeline, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("failed to encode pipeline: %w", err)
	}
	return nil
}

// LoadPipelineFromReader reads a pipeline from r.
func LoadPipelineFromReader(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline: %w", err)
	}
	return &p, nil
}
