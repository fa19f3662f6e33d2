package models

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewResponse(t *testing.T) {
	testCode := http.StatusCreated
	testData := map[string]string{"key": "value"}
	testText := "Resource Created"

	currentTimeBeforeCall := time.Now().UnixNano() / int64(time.Millisecond)
	response := NewResponse(testCode, testData, testText)
	currentTimeAfterCall := time.Now().UnixNano() / int64(time.Millisecond)

	assert.Equal(t, testCode, response.Code, "Response code should match input")
	assert.Equal(t, testData, response.Data, "Response data should match input")
	assert.Equal(t, testText, response.Text, "Response text should match input")
	assert.Equal(t, 2, response.Version, "Response version should be 2")
	assert.GreaterOrEqual(t, response.CurrentTime, currentTimeBeforeCall)
	assert.LessOrEqual(t, response.CurrentTime, currentTimeAfterCall)
}

func TestNewEntryResponse(t *testing.T) {
	entry := DefaultAppConfig()

	response := NewEntryResponse(entry)

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "OK", response.Text)
	assert.Equal(t, 2, response.Version)

	responseData, ok := response.Data.(map[string]interface{})
	assert.True(t, ok, "Response data should be a map")
	assert.Equal(t, entry, responseData["entry"])
}

func TestNewOKResponse(t *testing.T) {
	testData := map[string]string{"status": "all good"}

	response := NewOKResponse(testData)

	assert.Equal(t, http.StatusOK, response.Code, "Response code should be StatusOK")
	assert.Equal(t, "OK", response.Text, "Response text should be 'OK'")
	assert.Equal(t, testData, response.Data, "Response data should match input")
}
