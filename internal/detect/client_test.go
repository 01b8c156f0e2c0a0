package detect

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleBody = `{"prediction":[3,2,3,8,2,3],"predicted_labels":["A","B","A","C","B","A"],"samples":6,"preprocessing":{"separator":"\\t","columns_detected":23,"label_column":null},"status":"complete"}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts DecodeOptions) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Decode: opts})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestClient_DetectSendsMultipartFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("Expected path '/detect', got '%s'", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got '%s'", r.Method)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Expected multipart field 'file': %v", err)
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		if string(data) != "1.0\t2.0\t3.0\n" {
			t.Errorf("Unexpected file content %q", string(data))
		}
		if header.Filename != "subject1.log" {
			t.Errorf("Expected filename 'subject1.log', got '%s'", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}, DecodeOptions{})

	result, err := client.Detect(context.Background(), &Upload{
		Name:    "/data/subject1.log",
		Content: strings.NewReader("1.0\t2.0\t3.0\n"),
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.Response.Samples == nil || *result.Response.Samples != 6 {
		t.Errorf("Expected 6 samples, got %v", result.Response.Samples)
	}
	if string(result.Raw) != sampleBody {
		t.Errorf("Raw body should be kept verbatim")
	}
}

func TestClient_ServerErrorDetail(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"detail used verbatim", http.StatusRequestEntityTooLarge, `{"detail":"file too large"}`, "file too large"},
		{"unparsable body", http.StatusBadGateway, `<html>bad gateway</html>`, "Error del servidor (502)"},
		{"empty body", http.StatusInternalServerError, ``, "Error del servidor (500)"},
		{"empty detail", http.StatusBadRequest, `{"detail":""}`, "Error del servidor (400)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, DecodeOptions{})

			_, err := client.Detect(context.Background(), &Upload{Name: "a.log", Content: strings.NewReader("x")})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !IsServerError(err) {
				t.Errorf("Expected server error, got %T: %v", err, err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, err.Error())
			}
			if de := AsError(err); de.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, de.StatusCode)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient(ClientConfig{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.Detect(context.Background(), &Upload{Name: "a.log", Content: strings.NewReader("x")})
	if !IsTransportError(err) {
		t.Fatalf("Expected transport error, got %T: %v", err, err)
	}
	if err.Error() == "" {
		t.Error("Transport error should carry a message")
	}
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`definitely not json`))
	}

	strict := newTestClient(t, handler, DecodeOptions{Strict: true})
	if _, err := strict.Detect(context.Background(), &Upload{Name: "a.log", Content: strings.NewReader("x")}); !IsMalformedError(err) {
		t.Errorf("Strict client: expected malformed error, got %v", err)
	}

	client := newTestClient(t, handler, DecodeOptions{})
	result, err := client.Detect(context.Background(), &Upload{Name: "a.log", Content: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("Default client: unexpected error %v", err)
	}
	v := Render(result)
	if v.Summary != "Ventanas: - | Actividades: n/a | Separador: ? | Ultima columna: no" {
		t.Errorf("Default render should use placeholders, got %q", v.Summary)
	}
	if v.Raw != "{}" {
		t.Errorf("Default raw should be {}, got %q", v.Raw)
	}
}

func TestClient_NilUpload(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, DecodeOptions{})

	_, err := client.Detect(context.Background(), nil)
	if !IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if called {
		t.Error("Nil upload must not reach the network")
	}
}

func TestClient_Health(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Expected path '/health', got '%s'", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"ok","message":"backend listo"}`))
	}, DecodeOptions{})

	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if status.Status != "ok" || status.Message != "backend listo" {
		t.Errorf("Unexpected health status %+v", status)
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "   ", "ftp://backend:8000", "://bad"} {
		if _, err := NewClient(ClientConfig{BaseURL: base}); err == nil {
			t.Errorf("Expected error for base URL %q", base)
		}
	}
}

func TestClient_BaseURLWithPath(t *testing.T) {
	client, err := NewClient(ClientConfig{BaseURL: "http://backend:8000/api/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := client.endpoint("detect"); got != "http://backend:8000/api/detect" {
		t.Errorf("endpoint = %q", got)
	}
}
