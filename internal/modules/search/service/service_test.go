package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sheesh.app/server/internal/entity"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type fakeMeili struct {
	mu       sync.Mutex
	requests []recordedRequest
	hits     string
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if strings.HasSuffix(r.URL.Path, "/search") {
		_, _ = io.WriteString(w, `{"hits":`+f.hits+`,"query":"x","processingTimeMs":1,"limit":20,"offset":0,"estimatedTotalHits":2}`)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"taskUid":    7,
		"indexUid":   "groups",
		"status":     "enqueued",
		"type":       "documentAdditionOrUpdate",
		"enqueuedAt": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (f *fakeMeili) find(method, suffix string) *recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.requests {
		if f.requests[i].Method == method && strings.HasSuffix(f.requests[i].Path, suffix) {
			return &f.requests[i]
		}
	}
	return nil
}

func newTestIndex(t *testing.T, fake *fakeMeili) GroupIndex {
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewMeiliSearchService(meilisearch.New(srv.URL, meilisearch.WithAPIKey("test")))
}

func TestIndexGroup_SanitizesText(t *testing.T) {
	fake := &fakeMeili{hits: "[]"}
	index := newTestIndex(t, fake)

	desc := "<b>Less   scrolling</b> &amp; more <script>alert(1)</script>walking"
	err := index.IndexGroup(&entity.Group{ID: 12, Name: "Night <i>owls</i>", Description: &desc})
	require.NoError(t, err)

	req := fake.find(http.MethodPost, "/indexes/groups/documents")
	require.NotNil(t, req)

	var docs []meiliGroupDoc
	require.NoError(t, json.Unmarshal([]byte(req.Body), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "12", docs[0].ID)
	assert.Equal(t, "Night owls", docs[0].Name)
	assert.Equal(t, "Less scrolling & more walking", docs[0].Description)
	assert.False(t, docs[0].IsPrivate)
}

func TestSearchGroups(t *testing.T) {
	fake := &fakeMeili{hits: `[{"id":"4"},{"id":"oops"},{"id":"2"}]`}
	index := newTestIndex(t, fake)

	ids, err := index.SearchGroups("walk", 20)
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 2}, ids)

	req := fake.find(http.MethodPost, "/indexes/groups/search")
	require.NotNil(t, req)
	assert.Contains(t, req.Body, `"filter":"is_private = false"`)
}

func TestDeleteGroup(t *testing.T) {
	fake := &fakeMeili{hits: "[]"}
	index := newTestIndex(t, fake)

	require.NoError(t, index.DeleteGroup(9))
	assert.NotNil(t, fake.find(http.MethodDelete, "/indexes/groups/documents/9"))
}
