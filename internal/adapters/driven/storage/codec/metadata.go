package codec

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// EncodeMetadata serialises records as an indented JSON array.
func EncodeMetadata(records []domain.MetadataRecord) ([]byte, error) {
	if records == nil {
		records = []domain.MetadataRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return data, nil
}

// DecodeMetadata parses a JSON array of records. Unknown keys are ignored.
func DecodeMetadata(data []byte) ([]domain.MetadataRecord, error) {
	var records []domain.MetadataRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return records, nil
}
