package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus_FailsClosed(t *testing.T) {
	assert.Equal(t, StatusApproved, ParseStatus(" Approved "))
	assert.Equal(t, StatusChargedBack, ParseStatus("charged_back"))
	assert.Equal(t, StatusUnknown, ParseStatus("algo_nuevo_de_mp"))
	assert.Equal(t, StatusUnknown, ParseStatus(""))
}

func TestBucketMapping(t *testing.T) {
	cases := []struct {
		st     Status
		bucket Bucket
	}{
		{StatusApproved, BucketSuccess},
		{StatusPending, BucketPending},
		{StatusInProcess, BucketPending},
		{StatusAuthorized, BucketFailure},
		{StatusInMediation, BucketFailure},
		{StatusRejected, BucketFailure},
		{StatusCancelled, BucketFailure},
		{StatusRefunded, BucketFailure},
		{StatusChargedBack, BucketFailure},
		{StatusUnknown, BucketNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.bucket, tc.st.Bucket(), "status %s", tc.st)
	}
}

func TestIsFinalNegative(t *testing.T) {
	for _, st := range []Status{StatusRejected, StatusCancelled, StatusRefunded, StatusChargedBack} {
		assert.True(t, st.IsFinalNegative(), "status %s", st)
	}
	// authorized cae en el bucket de fallo pero no debe notificar
	for _, st := range []Status{StatusAuthorized, StatusInMediation, StatusPending, StatusApproved, StatusUnknown} {
		assert.False(t, st.IsFinalNegative(), "status %s", st)
	}
}
