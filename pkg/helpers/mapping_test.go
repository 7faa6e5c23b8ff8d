package helpers

import (
	"testing"
	"time"

	"github.com/oksasatya/go-ddd-identity-service/pkg/mailer"
)

func TestEnsureRecipientAndEmail(t *testing.T) {
	job := &mailer.EmailJob{To: "a@x.com"}
	EnsureRecipientAndEmail(job)
	if job.Data["Email"] != "a@x.com" || job.Data["RecipientEmail"] != "a@x.com" {
		t.Errorf("data = %v", job.Data)
	}

	job = &mailer.EmailJob{To: "a@x.com", Data: map[string]any{"Email": "b@x.com"}}
	EnsureRecipientAndEmail(job)
	if job.Data["Email"] != "b@x.com" || job.Data["RecipientEmail"] != "a@x.com" {
		t.Errorf("data = %v", job.Data)
	}
}

func TestObjectURI(t *testing.T) {
	if got := ObjectURI("bkt", "exports/users.ndjson"); got != "gs://bkt/exports/users.ndjson" {
		t.Errorf("uri = %q", got)
	}
}

func TestExportObjectName(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 1, 0, time.FixedZone("WIB", 7*3600))
	if got := ExportObjectName("exports/", at); got != "exports/users-20240309T000501Z.ndjson" {
		t.Errorf("name = %q", got)
	}
	if got := ExportObjectName("", at); got != "users-20240309T000501Z.ndjson" {
		t.Errorf("name without prefix = %q", got)
	}
}
