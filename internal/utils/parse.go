package utils

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// RepairJSON returns content unchanged when it is valid JSON, and the
// jsonrepair output otherwise.
func RepairJSON(content string) (string, error) {
	if json.Valid([]byte(content)) {
		return content, nil
	}
	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return "", fmt.Errorf("repair JSON: %w", err)
	}
	return repaired, nil
}
