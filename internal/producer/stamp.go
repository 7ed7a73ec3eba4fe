package producer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StampMetadata overwrites the batch identity fields with configured values.
// 생성기가 보고한 model/date 는 신뢰하지 않는다.
func StampMetadata(raw []byte, forecasterID, displayName, date string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode batch: null document")
	}

	doc["model"] = forecasterID
	doc["model_display_name"] = displayName
	doc["date"] = date

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	return out, nil
}
