package answer

import (
	"fmt"
	"strings"
)

// DatasetType labels what kind of business data the table holds. It only
// frames the prompt; it does not change parsing.
type DatasetType string

const (
	Sales         DatasetType = "Sales"
	Manufacturing DatasetType = "Manufacturing"
	Invoice       DatasetType = "Invoice"
	Purchase      DatasetType = "Purchase"
	Inventory     DatasetType = "Inventory"
)

var datasetTypes = []DatasetType{Sales, Manufacturing, Invoice, Purchase, Inventory}

// DatasetTypes returns the supported labels in display order.
func DatasetTypes() []DatasetType {
	return append([]DatasetType(nil), datasetTypes...)
}

// ParseDatasetType matches a label case-insensitively.
func ParseDatasetType(s string) (DatasetType, error) {
	s = strings.TrimSpace(s)
	for _, t := range datasetTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	names := make([]string, len(datasetTypes))
	for i, t := range datasetTypes {
		names[i] = string(t)
	}
	return "", fmt.Errorf("unknown dataset type %q (use one of: %s)", s, strings.Join(names, ", "))
}

// Valid reports whether t is one of the supported labels.
func (t DatasetType) Valid() bool {
	for _, v := range datasetTypes {
		if v == t {
			return true
		}
	}
	return false
}
