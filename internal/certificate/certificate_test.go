package certificate

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/game"
)

func finished() game.Snapshot {
	return game.Snapshot{
		SessionID: "sess-1",
		Mode:      catalog.ModeQuiz,
		Topic:     "topic1",
		Title:     "Computational Thinking",
		Status:    game.StatusComplete,
		Player:    "Ada",
		Score:     14,
		Total:     15,
		Percent:   93,
		Grade:     "Excellent!",
	}
}

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("secret", 365, "https://revise.example/")
	token, _, err := iss.Issue(finished())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	c, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.Player != "Ada" || c.Score != 14 || c.Percent != 93 || c.ID != "sess-1" || c.Mode != catalog.ModeQuiz {
		t.Fatalf("claims = %+v", c)
	}
	if got, want := iss.VerifyURL("abc"), "https://revise.example/certificates/abc"; got != want {
		t.Errorf("VerifyURL = %s, want %s", got, want)
	}
}

func TestVerifyRejects(t *testing.T) {
	iss := NewIssuer("secret", 1, "")
	token, _, err := iss.Issue(finished())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewIssuer("other", 1, "").Verify(token); !errors.Is(err, ErrInvalidCertificate) {
		t.Errorf("wrong secret err = %v", err)
	}
	tampered := []byte(token)
	i := bytes.IndexByte(tampered, '.') + 5
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}
	if _, err := iss.Verify(string(tampered)); !errors.Is(err, ErrInvalidCertificate) {
		t.Errorf("tampered err = %v", err)
	}

	later := NewIssuer("secret", 1, "")
	later.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if _, err := later.Verify(token); !errors.Is(err, ErrInvalidCertificate) {
		t.Errorf("expired err = %v", err)
	}
}

func TestIssueRequiresFinishedSession(t *testing.T) {
	s := finished()
	s.Status = game.StatusInProgress
	if _, _, err := NewIssuer("secret", 1, "").Issue(s); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("err = %v", err)
	}
}

func TestQRIsPNG(t *testing.T) {
	png, err := QR("https://revise.example/certificates/abc")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("not a PNG: % x", png[:8])
	}
}
