package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func TestLoadEnvFileMissingFileIsIgnored(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file must be a no-op: %v", err)
	}
}

func TestLoadEnvFileAppliesDeploymentProfile(t *testing.T) {
	for _, key := range []string{"AUTH_API_BASE_URL", "CATALOG_API_BASE_URL", "REDIS_ADDR", "AUDIT_DB_DSN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	path := writeEnvFile(t, strings.Join([]string{
		"# fragansa movies-web local profile",
		"AUTH_API_BASE_URL=http://localhost:5000",
		"CATALOG_API_BASE_URL=http://localhost:5001",
		"REDIS_ADDR=localhost:6379",
		`AUDIT_DB_DSN="file:audit.db?cache=shared"`,
		"",
	}, "\n"))

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("AUTH_API_BASE_URL"); got != "http://localhost:5000" {
		t.Fatalf("AUTH_API_BASE_URL=%q", got)
	}
	if got := os.Getenv("REDIS_ADDR"); got != "localhost:6379" {
		t.Fatalf("REDIS_ADDR=%q", got)
	}
	if got := os.Getenv("AUDIT_DB_DSN"); got != "file:audit.db?cache=shared" {
		t.Fatalf("quoted AUDIT_DB_DSN=%q", got)
	}
}

func TestLoadEnvFileNeverOverridesTheEnvironment(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	path := writeEnvFile(t, "REDIS_ADDR=localhost:6379\nSECURE_COOKIES=false\n")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("REDIS_ADDR"); got != "redis.internal:6379" {
		t.Fatalf("environment must win over the file, got %q", got)
	}
	if got := os.Getenv("SECURE_COOKIES"); got != "false" {
		t.Fatalf("SECURE_COOKIES=%q", got)
	}
}

func TestLoadEnvFileSkipsJunkLines(t *testing.T) {
	t.Setenv("DEFAULT_LANG", "")
	os.Unsetenv("DEFAULT_LANG")
	path := writeEnvFile(t, strings.Join([]string{
		"# lang defaults",
		"DEFAULT_LANG=es",
		"THIS LINE HAS NO ASSIGNMENT",
		"=orphan-value",
		"   ",
	}, "\n"))

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("junk lines must not fail the load: %v", err)
	}
	if got := os.Getenv("DEFAULT_LANG"); got != "es" {
		t.Fatalf("DEFAULT_LANG=%q", got)
	}
}

func TestLoadEnvFileDirectoryPathFails(t *testing.T) {
	err := LoadEnvFile(t.TempDir())
	if err == nil {
		t.Fatal("expected an error when the path is a directory")
	}
	if !strings.Contains(err.Error(), "env file") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func FuzzLoadEnvFile(f *testing.F) {
	f.Add([]byte("AUTH_API_BASE_URL=http://localhost:5000\nREDIS_ADDR=localhost:6379\n"))
	f.Add([]byte("# only comments\n\n   \n"))
	f.Add([]byte("BROKEN LINE\n=no-key\nDEFAULT_LANG=\"es\"\n"))
	f.Add([]byte{0xff, 0x3d, 0x00, 0x0a})

	f.Fuzz(func(t *testing.T, content []byte) {
		if len(content) > 1<<16 {
			content = content[:1<<16]
		}
		path := filepath.Join(t.TempDir(), "fuzz.env")
		if err := os.WriteFile(path, content, 0o600); err != nil {
			t.Skip()
		}

		// Whatever the file contains, loading must not panic and any
		// error must be one of the wrapped shapes this package emits.
		err := LoadEnvFile(path)
		if err != nil {
			msg := err.Error()
			if !strings.Contains(msg, "open env file:") &&
				!strings.Contains(msg, "read env file:") &&
				!strings.Contains(msg, "set env ") {
				t.Fatalf("unexpected error shape: %v", err)
			}
		}

		// A second pass sees every successfully set key as existing, so
		// it can only fail the same way.
		if again := LoadEnvFile(path); (err == nil) != (again == nil) {
			t.Fatalf("reload changed outcome: first=%v second=%v", err, again)
		}
	})
}
