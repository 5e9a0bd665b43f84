package utils

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/constants"
)

func testContext(url string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, url, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		url    string
		page   int
		limit  int
		offset int
	}{
		{"/", 1, 10, 0},
		{"/?page=3&limit=20", 3, 20, 40},
		{"/?page=0&limit=0", 1, 10, 0},
		{"/?page=-2&limit=500", 1, 10, 0},
		{"/?page=abc", 1, 10, 0},
		{"/?page=9223372036854775807&limit=100", 1_000_000, 100, 99_999_900},
		{"/?page=99999999999999999999", 1, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			p := GetPaginationParams(testContext(tt.url))
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestNewPaginationParams_HugePage(t *testing.T) {
	p := NewPaginationParams(math.MaxInt, constants.MaxPageSize)
	assert.Equal(t, constants.MaxPage, p.Page)
	assert.Equal(t, (constants.MaxPage-1)*constants.MaxPageSize, p.Offset)
	assert.Positive(t, p.Offset)
}

func TestNewPaginationResponse(t *testing.T) {
	resp := NewPaginationResponse(NewPaginationParams(2, 10), 15)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, int64(15), resp.Total)

	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortParams{Field: "due_date", Desc: true}, ParseSort("-due_date"))
	assert.Equal(t, SortParams{Field: "name"}, ParseSort(" name "))
	assert.Equal(t, SortParams{}, ParseSort(""))
}

func TestParseIDs(t *testing.T) {
	c := testContext("/?project_id=12&bad=0")
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	id, err := ParseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	c.Params = gin.Params{{Key: "id", Value: "x"}}
	_, err = ParseIDParam(c, "id")
	assert.Error(t, err)

	projectID, err := ParseOptionalIDQuery(c, "project_id")
	require.NoError(t, err)
	require.NotNil(t, projectID)
	assert.Equal(t, uint64(12), *projectID)

	missing, err := ParseOptionalIDQuery(c, "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = ParseOptionalIDQuery(c, "bad")
	assert.Error(t, err)
}

func TestGenerateResetToken(t *testing.T) {
	token, digest, err := GenerateResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 40)
	assert.Len(t, digest, 64)
	assert.Equal(t, HashToken(token), digest)

	other, _, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
