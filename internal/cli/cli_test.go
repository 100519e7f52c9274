package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"platingreport/internal/summarizer"
)

const platingCSV = `電鍍次數,電鍍開始時間,硫酸實際值(g/l),硫酸銅實際值(g/l),氯離子實際值(ppm/l),磷銅球(kg),SP10平均,硬度HB
1,2024-01-05,65,205,70,12,1.1,80
2,2024-01-20,70,205,70,13,1.2,82
3,2024-02-03,,205,70,11,1.3,84
`

func isolateEnv(t *testing.T) string {
	t.Helper()

	for _, name := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "RULES_PATH", "LOG_LEVEL", "LOG_FORMAT", "LLM_PROVIDER"} {
		t.Setenv(name, "")
		if err := os.Unsetenv(name); err != nil {
			t.Fatalf("unset %s: %v", name, err)
		}
	}
	return filepath.Join(t.TempDir(), "missing.env")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestReportPrintsEveryView(t *testing.T) {
	envFile := isolateEnv(t)

	path := filepath.Join(t.TempDir(), "EP15.csv")
	if err := os.WriteFile(path, []byte(platingCSV), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	stdout, stderr, err := execute(t, "report", "--env-file", envFile, "--file", path, "--sheet", "EP15")
	if err != nil {
		t.Fatalf("report: %v\n%s", err, stderr)
	}

	for _, want := range []string{"EP15 全部資料（已去除 1 筆缺值", "僅顯示超標列（1 筆）", "OK 1 / NG 1"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, `"msg":"Sheet is processed"`) || !strings.Contains(stderr, `"runID"`) {
		t.Fatalf("expected json logs with runID, got:\n%s", stderr)
	}
}

func TestReportAnalyzeRequiresCredential(t *testing.T) {
	envFile := isolateEnv(t)

	_, _, err := execute(t, "report", "--env-file", envFile, "--analyze")
	if !errors.Is(err, summarizer.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestReportUnknownFile(t *testing.T) {
	envFile := isolateEnv(t)

	_, _, err := execute(t, "report", "--env-file", envFile, "--file", filepath.Join(t.TempDir(), "missing.xlsx"))
	if err == nil {
		t.Fatalf("expected error for a missing workbook")
	}
}

func TestAskRequiresCredential(t *testing.T) {
	envFile := isolateEnv(t)

	_, _, err := execute(t, "ask", "--env-file", envFile, "how", "does", "AI", "work?")
	if !errors.Is(err, summarizer.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestAskNeedsQuestion(t *testing.T) {
	envFile := isolateEnv(t)

	if _, _, err := execute(t, "ask", "--env-file", envFile); err == nil {
		t.Fatalf("expected error without a question")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	log, err := newLogger(&buf, "json", "warn")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	log.Info("Hidden")
	log.Warn("Shown", "sheet", "EP15")

	if strings.Contains(buf.String(), "Hidden") || !strings.Contains(buf.String(), `"sheet":"EP15"`) {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	log, err = newLogger(&buf, "text", "debug")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	log.Debug("Shown")
	if !strings.Contains(buf.String(), "Shown") {
		t.Fatalf("expected debug line, got %q", buf.String())
	}
}

func TestNewLoggerRejectsUnknownValues(t *testing.T) {
	if _, err := newLogger(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := newLogger(&bytes.Buffer{}, "json", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestPrintReplyFailsOnErrorReply(t *testing.T) {
	var buf bytes.Buffer

	reply := summarizer.Reply("", &summarizer.ExhaustedError{Attempts: 4, Err: errors.New("503 UNAVAILABLE")})

	err := printReply(&buf, reply)
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
	if !strings.Contains(buf.String(), "model is overloaded after 4 attempts") {
		t.Fatalf("expected the reply to be printed, got %q", buf.String())
	}
}

func TestPrintReplyAcceptsText(t *testing.T) {
	var buf bytes.Buffer

	if err := printReply(&buf, "AI learns patterns."); err != nil {
		t.Fatalf("printReply: %v", err)
	}
	if !strings.Contains(buf.String(), "AI learns patterns.") {
		t.Fatalf("expected the reply to be printed, got %q", buf.String())
	}
}
