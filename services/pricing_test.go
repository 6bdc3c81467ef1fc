package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	total, err := ComputeTotal(10000, date(10), date(13))
	require.NoError(t, err)
	require.Equal(t, int64(30000), total)

	total, err = ComputeTotal(12550, date(10), date(11))
	require.NoError(t, err)
	require.Equal(t, int64(12550), total)
}

func TestComputeTotalRejectsEmptyStay(t *testing.T) {
	_, err := ComputeTotal(10000, date(10), date(10))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = ComputeTotal(10000, date(13), date(10))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestFormatCents(t *testing.T) {
	require.Equal(t, "300.00", FormatCents(30000))
	require.Equal(t, "125.50", FormatCents(12550))
	require.Equal(t, "0.05", FormatCents(5))
	require.Equal(t, "0.00", FormatCents(0))
	require.Equal(t, "-12.34", FormatCents(-1234))
}
