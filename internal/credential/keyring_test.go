package credential

import "testing"

func TestCanvasToken_PrefersEnvironment(t *testing.T) {
	t.Setenv(TokenEnv, "from-env")

	token, err := CanvasToken()
	if err != nil {
		t.Fatalf("CanvasToken: %v", err)
	}
	if token != "from-env" {
		t.Fatalf("token = %q", token)
	}
}
