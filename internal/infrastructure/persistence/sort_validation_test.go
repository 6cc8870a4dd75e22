package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"asc", "ASC"},
		{" ASC ", "ASC"},
		{"desc", "DESC"},
		{"", "DESC"},
		{"asc; DROP TABLE parties", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "balance", ValidateSortField("balance", PartySortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", PartySortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password", PartySortFields, "created_at"))
	assert.Equal(t, "amount", ValidateSortField(" amount ", DocumentSortFields, "created_at"))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "name ASC", orderClause("name", "asc", PartySortFields, "created_at"))
	assert.Equal(t, "created_at DESC", orderClause("1; --", "", PartySortFields, "created_at"))
}
