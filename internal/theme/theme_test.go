package theme

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/notifeed/internal/model"
)

func TestForTypeCoversEveryType(t *testing.T) {
	seen := map[string]bool{}
	for _, typ := range model.Types {
		p := ForType(typ)
		require.NotEmpty(t, p.Icon, typ)
		require.NotEmpty(t, p.Title, typ)
		require.False(t, seen[p.Title], "duplicate title %s", p.Title)
		seen[p.Title] = true
	}
}

func TestForTypeUnknownFallsBackToOther(t *testing.T) {
	require.Equal(t, ForType(model.TypeOther), ForType(model.Type("fungus")))
}
