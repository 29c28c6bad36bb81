package pages

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/benpsk/items-service/internal/item"
)

func render(t *testing.T, m ItemsPageModel) string {
	t.Helper()
	var b strings.Builder
	if err := ItemsPage(m).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestItemsPageEscapesItemFields(t *testing.T) {
	t.Parallel()

	desc := `<b>"bold"</b>`
	html := render(t, ItemsPageModel{
		AppName: "Items API",
		Version: "1.0.0",
		Items: []item.Item{
			{ID: 7, Name: "<script>alert(1)</script>", Description: &desc, CreatedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)},
		},
	})

	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatalf("item name was not escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("expected escaped name in output")
	}
	if !strings.Contains(html, "&lt;b&gt;&#34;bold&#34;&lt;/b&gt;") {
		t.Fatalf("expected escaped description in output")
	}
	if !strings.Contains(html, `data-id="7"`) {
		t.Fatalf("expected item id attribute")
	}
	if !strings.Contains(html, "2026-10-15 09:30") {
		t.Fatalf("expected formatted created_at")
	}
	if strings.Contains(html, "No items yet.") {
		t.Fatalf("did not expect empty placeholder")
	}
}

func TestItemsPageEmptyStateAndError(t *testing.T) {
	t.Parallel()

	html := render(t, ItemsPageModel{Error: "Could not load items."})

	if !strings.Contains(html, "<title>Items</title>") {
		t.Fatalf("expected fallback title")
	}
	if !strings.Contains(html, `maxlength="100"`) || !strings.Contains(html, `maxlength="500"`) {
		t.Fatalf("expected input length limits")
	}
	if !strings.Contains(html, "No items yet.") {
		t.Fatalf("expected empty placeholder")
	}
	if !strings.Contains(html, "Could not load items.") {
		t.Fatalf("expected error message")
	}
}
