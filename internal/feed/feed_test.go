package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

const feedTemplate = `<?xml version="1.0" encoding="%s"?>
<rss version="2.0"><channel>
<title>테스트 피드</title>
<item>
<title>%s</title>
<link>https://www.inven.co.kr/webzine/news/?idx=1</link>
<description>요약</description>
<pubDate>Mon, 24 Aug 2026 03:00:00 +0000</pubDate>
</item>
</channel></rss>`

func testClient() *Client {
	return NewClient(5*time.Second, 0, 0)
}

func TestFetchUTF8Feed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		fmt.Fprintf(w, feedTemplate, "utf-8", "넥슨 신작 발표")
	}))
	defer srv.Close()

	items, err := testClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "넥슨 신작 발표", items[0].Title)
}

func TestFetchDecodesEUCKRFeed(t *testing.T) {
	utf8Doc := fmt.Sprintf(feedTemplate, "euc-kr", "넥슨 신작 발표")

	var encoded bytes.Buffer
	writer := transform.NewWriter(&encoded, korean.EUCKR.NewEncoder())
	_, err := writer.Write([]byte(utf8Doc))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=euc-kr")
		w.Write(encoded.Bytes())
	}))
	defer srv.Close()

	items, err := testClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "넥슨 신작 발표", items[0].Title)
}

func TestFetchNon200IsQueryLevelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient().Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestIsEUCKRDetection(t *testing.T) {
	assert.True(t, isEUCKR("text/xml; charset=euc-kr", nil))
	assert.True(t, isEUCKR("text/xml", []byte(`<?xml version="1.0" encoding="EUC-KR"?>`)))
	assert.False(t, isEUCKR("application/xml; charset=utf-8", []byte(`<?xml version="1.0" encoding="utf-8"?>`)))
}
