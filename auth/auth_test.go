package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestNoAuth(t *testing.T) {
	for _, token := range []string{"any-token", ""} {
		identity, err := NoAuth().Authenticate(context.Background(), token)
		if err != nil {
			t.Errorf("NoAuth should never return error, got: %v", err)
		}
		if identity != "anonymous" {
			t.Errorf("identity = %q, want anonymous", identity)
		}
	}
}

func TestBearerAuth(t *testing.T) {
	auth := BearerAuth(func(token string) (string, error) {
		if token == "valid-token" {
			return "user123", nil
		}
		return "", errors.New("invalid token")
	})

	identity, err := auth.Authenticate(context.Background(), "valid-token")
	if err != nil || identity != "user123" {
		t.Errorf("Authenticate(valid) = %q, %v", identity, err)
	}
	if _, err := auth.Authenticate(context.Background(), "other"); err == nil {
		t.Error("expected error for invalid token")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := auth.Authenticate(ctx, "valid-token"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestTokenAuth(t *testing.T) {
	tokens := map[string]string{"s3cret": "alice", "other": "bob"}
	auth := TokenAuth(tokens)
	tokens["late"] = "mallory"

	tests := []struct {
		token   string
		want    string
		wantErr bool
	}{
		{"s3cret", "alice", false},
		{"other", "bob", false},
		{"late", "", true},
		{"s3cre", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := auth.Authenticate(context.Background(), tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Authenticate(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("identity = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenAuthConcurrency(t *testing.T) {
	auth := TokenAuth(map[string]string{"a": "alice", "b": "bob"})

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, want := "a", "alice"
			if i%2 == 1 {
				token, want = "b", "bob"
			}
			got, err := auth.Authenticate(context.Background(), token)
			if err != nil || got != want {
				errs <- errors.New("wrong identity for " + token)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestTokenFromAuthorizationHeader(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc", "abc", nil},
		{"Bearer   abc ", "abc", nil},
		{"Basic abc", "", ErrInvalidAuthHeader},
		{"Bearer ", "", ErrTokenIsEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := TokenFromAuthorizationHeader(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func incoming(header string) context.Context {
	if header == "" {
		return context.Background()
	}
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", header))
}

func TestUnaryServerInterceptor(t *testing.T) {
	interceptor := UnaryServerInterceptor(TokenAuth(map[string]string{"s3cret": "alice"}))
	handler := func(ctx context.Context, _ any) (any, error) {
		return IdentityFromContext(ctx), nil
	}

	tests := []struct {
		name   string
		header string
		want   codes.Code
	}{
		{"valid", "Bearer s3cret", codes.OK},
		{"wrong token", "Bearer nope", codes.Unauthenticated},
		{"missing", "", codes.Unauthenticated},
		{"wrong scheme", "Basic s3cret", codes.Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := interceptor(incoming(tt.header), nil, &grpc.UnaryServerInfo{}, handler)
			if code := status.Code(err); code != tt.want {
				t.Fatalf("code = %v, want %v (%v)", code, tt.want, err)
			}
			if tt.want == codes.OK && got != "alice" {
				t.Errorf("identity = %v, want alice", got)
			}
		})
	}
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeStream) Context() context.Context { return s.ctx }

func TestStreamServerInterceptor(t *testing.T) {
	var identity string
	handler := func(_ any, ss grpc.ServerStream) error {
		identity = IdentityFromContext(ss.Context())
		return nil
	}

	interceptor := StreamServerInterceptor(TokenAuth(map[string]string{"s3cret": "alice"}))
	if err := interceptor(nil, &fakeStream{ctx: incoming("Bearer s3cret")}, &grpc.StreamServerInfo{}, handler); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if identity != "alice" {
		t.Errorf("identity = %q, want alice", identity)
	}

	err := interceptor(nil, &fakeStream{ctx: incoming("Bearer x")}, &grpc.StreamServerInfo{}, handler)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("code = %v, want Unauthenticated", status.Code(err))
	}

	identity = "unset"
	open := StreamServerInterceptor(nil)
	if err := open(nil, &fakeStream{ctx: context.Background()}, &grpc.StreamServerInfo{}, handler); err != nil {
		t.Fatalf("nil authenticator error = %v", err)
	}
	if identity != "" {
		t.Errorf("identity = %q, want empty", identity)
	}
}
