package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/dealscout/internal/model"
)

func normalizeIndustry(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       model.LeadCriteria
		wantErr string
	}{
		{name: "empty", c: model.LeadCriteria{}},
		{name: "open max", c: model.LeadCriteria{Revenue: &model.Range{Min: 100}}},
		{name: "equal bounds", c: model.LeadCriteria{Employees: &model.Range{Min: 5, Max: 5}}},
		{name: "inverted revenue", c: model.LeadCriteria{Revenue: &model.Range{Min: 10, Max: 5}}, wantErr: "revenue range is inverted"},
		{name: "negative employees", c: model.LeadCriteria{Employees: &model.Range{Min: -3}}, wantErr: "employees min must be >= 0"},
		{name: "negative limit", c: model.LeadCriteria{Limit: -1}, wantErr: "limit must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDataSourceError_Unwrap(t *testing.T) {
	e := &DataSourceError{}
	assert.Empty(t, e.Unwrap())
}
