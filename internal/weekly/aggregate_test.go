package weekly

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func epochKey(w WeekStart, offsetSeconds int64) string {
	return strconv.FormatInt(w.Unix()+offsetSeconds, 10)
}

func TestSumSince(t *testing.T) {
	boundary := WeekStartAt(time.Date(2024, 1, 3, 12, 0, 0, 0, Zone), 0)

	t.Run("counts at and after the boundary", func(t *testing.T) {
		cal := Calendar{
			epochKey(boundary, 0):     2,
			epochKey(boundary, 3600):  3,
			epochKey(boundary, 86400): 1,
		}
		assert.Equal(t, 6, SumSince(cal, boundary))
	})

	t.Run("drops everything before the boundary", func(t *testing.T) {
		cal := Calendar{
			epochKey(boundary, -1):     4,
			epochKey(boundary, -86400): 7,
			epochKey(boundary, 60):     5,
		}
		assert.Equal(t, 5, SumSince(cal, boundary))
	})

	t.Run("skips malformed keys", func(t *testing.T) {
		cal := Calendar{
			"not-a-timestamp":     9,
			"":                    9,
			epochKey(boundary, 1): 2,
		}
		assert.Equal(t, 2, SumSince(cal, boundary))
	})

	t.Run("empty calendar sums to zero", func(t *testing.T) {
		assert.Zero(t, SumSince(Calendar{}, boundary))
		assert.Zero(t, SumSince(nil, boundary))
	})
}
