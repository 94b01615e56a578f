package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accountRow feeds fixed column values to scanAccount.
type accountRow struct {
	likes    string
	inserted bool
}

func (r accountRow) Scan(dest ...any) error {
	*dest[0].(*string) = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	*dest[1].(*int64) = 42
	*dest[2].(*string) = "alice"
	*dest[3].(*string) = "Alice"
	*dest[4].(*string) = ""
	*dest[6].(*string) = r.likes
	*dest[7].(*string) = "6"
	*dest[8].(*string) = "6"
	*dest[9].(*time.Time) = time.Unix(0, 0)
	*dest[10].(*time.Time) = time.Unix(0, 0)
	if len(dest) > 11 {
		*dest[11].(*bool) = r.inserted
	}
	return nil
}

func TestScanAccount(t *testing.T) {
	var inserted bool
	a, err := scanAccount(accountRow{likes: "5.2000", inserted: true}, &inserted)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "5.2", a.LikeBalance.String())
	assert.Equal(t, int64(42), a.FID)

	_, err = scanAccount(accountRow{likes: "not-a-number"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "like_balance")
}
