// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutputPathFor(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{source: filepath.Join("photos", "IMG_0001.HEIC"), want: filepath.Join("photos", "IMG_0001.jpg")},
		{source: filepath.Join("photos", "trip.heic"), want: filepath.Join("photos", "trip.jpg")},
		{source: filepath.Join("a.b", "c.d.heic"), want: filepath.Join("a.b", "c.d.jpg")},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPathFor(tt.source))
		})
	}
}

func TestBatchProgressPercent(t *testing.T) {
	for i := 0; i <= 7; i++ {
		p := NewBatchProgress(i, 7, time.Second)
		assert.Equal(t, i*100/7, p.Percent(), "after %d of 7", i)
	}
	assert.Equal(t, 100, NewBatchProgress(7, 7, time.Second).Percent())
	assert.Equal(t, 33, NewBatchProgress(1, 3, 0).Percent())
}

func TestNewBatchProgressETA(t *testing.T) {
	p := NewBatchProgress(2, 5, 10*time.Second)
	assert.Equal(t, 15*time.Second, p.EstimatedRemaining)

	done := NewBatchProgress(5, 5, 10*time.Second)
	assert.Zero(t, done.EstimatedRemaining)

	none := NewBatchProgress(0, 5, time.Second)
	assert.Zero(t, none.EstimatedRemaining)
}

func TestBatchSummaryAdd(t *testing.T) {
	var s BatchSummary
	s.Add(OutcomeSuccess)
	s.Add(OutcomeSkipped)
	s.Add(OutcomeFailed)
	s.Add(OutcomeFailed)

	assert.Equal(t, 1, s.Converted)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 4, s.Processed())
	assert.True(t, s.HasFailures())
}

func TestEffectiveQuality(t *testing.T) {
	assert.Equal(t, DefaultQuality, ConverterConfig{}.EffectiveQuality())
	assert.Equal(t, 100, ConverterConfig{Quality: 150}.EffectiveQuality())
	assert.Equal(t, 75, ConverterConfig{Quality: 75}.EffectiveQuality())
}

func TestLanguageValid(t *testing.T) {
	assert.True(t, LanguageEnglish.Valid())
	assert.True(t, LanguageBangla.Valid())
	assert.False(t, Language("French").Valid())
	assert.False(t, Language("english").Valid())
}
