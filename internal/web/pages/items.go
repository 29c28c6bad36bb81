package pages

import (
	"strconv"
	"strings"
	"time"

	"github.com/benpsk/items-service/internal/item"
)

type ItemsPageModel struct {
	AppName string
	Version string
	Items   []item.Item
	Error   string
}

func (m ItemsPageModel) title() string {
	if name := strings.TrimSpace(m.AppName); name != "" {
		return name
	}
	return "Items"
}

func itemID(it item.Item) string {
	return strconv.FormatInt(it.ID, 10)
}

func createdAtAttr(it item.Item) string {
	return it.CreatedAt.UTC().Format(time.RFC3339)
}

func createdAtLabel(it item.Item) string {
	return it.CreatedAt.UTC().Format("2006-01-02 15:04")
}
