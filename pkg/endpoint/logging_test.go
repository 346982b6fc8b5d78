package endpoint

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alyoongchat/msgsend/pkg/log"
)

func TestSendMessage_LogsHeaderNamesOnly(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	var buf bytes.Buffer
	logger := log.NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	ep := newEndpoint(t, ts.URL, WithLogger(logger))

	call := ep.SendMessage(context.Background(), map[string]string{"Authorization": "key=very-secret"}, "{}")
	if _, err := call.Result(); !errors.Is(err, ErrStatus) {
		t.Fatalf("err = %v, want ErrStatus", err)
	}

	out := buf.String()
	for _, want := range []string{"Authorization", call.ID(), "send rejected"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "very-secret") {
		t.Errorf("header values must not be logged:\n%s", out)
	}
}
