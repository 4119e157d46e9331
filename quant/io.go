// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package quant

import (
	"github.com/born-ml/fsequant/internal/serialization"
)

// Save writes weights to a .born file.
func Save(path string, weights []*Weight, modelType string, metadata map[string]string) error {
	writer, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	if err := writer.WriteWeights(weights, modelType, metadata); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// Load reads every weight of a .born file, validating checksums.
func Load(path string) ([]*Weight, error) {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.ReadWeights()
}
