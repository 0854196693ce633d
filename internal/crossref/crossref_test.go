package crossref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJiraKeys(t *testing.T) {
	assert.Equal(t,
		[]string{"PROJ-1", "OPS-22"},
		ExtractJiraKeys("fix PROJ-1 and OPS-22, again PROJ-1"),
	)
	assert.Nil(t, ExtractJiraKeys("nothing here"))
}

func TestNormalizeTicket(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  PROJ-12 ", "PROJ-12"},
		{"proj-12", "PROJ-12"},
		{"https://acme.atlassian.net/browse/OPS-7", "OPS-7"},
		{"https://acme.atlassian.net/browse/ops-7?focused=1", "OPS-7"},
		{"not a ticket", "not a ticket"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTicket(tt.in), tt.in)
	}
}
