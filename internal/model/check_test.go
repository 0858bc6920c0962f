package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrun/wrun/internal/model"
)

func TestCheckResultHelpers(t *testing.T) {
	results := []model.CheckResult{
		{ID: "browser_binary", Status: model.CheckStatusOK},
		{ID: "wallet_extension", Status: model.CheckStatusOK},
		{ID: "headless_extension", Status: model.CheckStatusWarning},
		{ID: "artifacts_dir", Status: model.CheckStatusError},
	}

	assert.True(t, model.HasErrors(results))
	assert.True(t, model.HasWarnings(results))

	ok, warnings, errors := model.CountByStatus(results)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, warnings)
	assert.Equal(t, 1, errors)

	assert.False(t, model.HasErrors(nil))
	assert.False(t, model.HasWarnings(nil))
}
