package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"ServiceInfo", &ServiceInfo{}, "service_infos"},
		{"Evaluation", &Evaluation{}, "evaluations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels_ContainsEveryTable(t *testing.T) {
	assert.Len(t, DatabaseModels, 2)
	assert.IsType(t, &ServiceInfo{}, DatabaseModels[0])
	assert.IsType(t, &Evaluation{}, DatabaseModels[1])
}
