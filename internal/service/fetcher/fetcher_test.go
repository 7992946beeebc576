package fetcher

import (
	"context"
	"detectionview/internal/model"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://upstream.test"

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func TestFetchDetections_Success(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", testBaseURL+DetectionsPath,
		httpmock.NewStringResponder(http.StatusOK, `[
			{"image":"a.jpg","label":"cat","confidence":0.92,"timestamp":"T1","msg":"m1"},
			{"image":"b.jpg","label":"dog","confidence":0.5,"timestamp":"T2","msg":"m2"}
		]`))

	detections, err := NewFetcher(testBaseURL+"/", nil).FetchDetections(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.Detection{
		{Image: "a.jpg", Label: "cat", Confidence: 0.92, Timestamp: "T1", Msg: "m1"},
		{Image: "b.jpg", Label: "dog", Confidence: 0.5, Timestamp: "T2", Msg: "m2"},
	}, detections)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestFetchDetections_EmptyAndNull(t *testing.T) {
	for _, body := range []string{"[]", "null"} {
		t.Run(body, func(t *testing.T) {
			setupHTTPMock(t)
			httpmock.RegisterResponder("GET", testBaseURL+DetectionsPath,
				httpmock.NewStringResponder(http.StatusOK, body))

			detections, err := NewFetcher(testBaseURL, nil).FetchDetections(context.Background())

			require.NoError(t, err)
			assert.NotNil(t, detections)
			assert.Empty(t, detections)
		})
	}
}

func TestFetchDetections_NonOKStatus(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusNotFound, http.StatusNoContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			setupHTTPMock(t)
			httpmock.RegisterResponder("GET", testBaseURL+DetectionsPath,
				httpmock.NewStringResponder(status, `[]`))

			detections, err := NewFetcher(testBaseURL, nil).FetchDetections(context.Background())

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnexpectedStatus))
			assert.Nil(t, detections)
		})
	}
}

func TestFetchDetections_MalformedJSON(t *testing.T) {
	for name, body := range map[string]string{
		"truncated": `[{"label":"cat"`,
		"object":    `{"label":"cat"}`,
		"html":      `<html>oops</html>`,
		"empty":     ``,
		"trailing":  `[{"label":"cat"}] <html>oops</html>`,
		"doubled":   `[] []`,
	} {
		t.Run(name, func(t *testing.T) {
			setupHTTPMock(t)
			httpmock.RegisterResponder("GET", testBaseURL+DetectionsPath,
				httpmock.NewStringResponder(http.StatusOK, body))

			_, err := NewFetcher(testBaseURL, nil).FetchDetections(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestFetchDetections_TrailingWhitespace(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", testBaseURL+DetectionsPath,
		httpmock.NewStringResponder(http.StatusOK, "[{\"label\":\"cat\"}]\n\n"))

	detections, err := NewFetcher(testBaseURL, nil).FetchDetections(context.Background())

	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, "cat", detections[0].Label)
}

func TestFetchDetections_TransportError(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", testBaseURL+DetectionsPath,
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := NewFetcher(testBaseURL, nil).FetchDetections(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestNewFetcher_URL(t *testing.T) {
	assert.Equal(t, "http://host:5000/detections", NewFetcher("http://host:5000//", nil).URL())
}
