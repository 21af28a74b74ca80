package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fitly/fitly/internal/client/clothes"
	"github.com/fitly/fitly/internal/common"
)

// List prints the signed-in user's wardrobe, newest first, with a count
// header. Every call is a full re-fetch.
func (a *App) List(ctx context.Context) error {
	user := a.session.User()
	if user == nil {
		printlnFn("Sign in first.")
		return common.ErrNotSignedIn
	}

	items, err := a.wardrobe.List(ctx, user.ID)
	if err != nil {
		printlnFn("Could not load the wardrobe:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Your wardrobe (%d items):", len(items)))
	if len(items) == 0 {
		printlnFn("No items yet. Use 'add' to create one.")
		return nil
	}
	for _, item := range items {
		printlnFn(renderItem(item))
	}
	return nil
}

func renderItem(item clothes.ClothingItem) string {
	s := fmt.Sprintf("- %s [%s]", item.Name, item.Category)
	if item.Color != "" {
		s += ", " + item.Color
	}
	if item.ImageURL != "" {
		s += "  " + item.ImageURL
	}
	return s
}

// Ping checks whether the backend answers at all. Diagnostic only.
func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.wardrobe.Ping(ctx); err != nil {
		printlnFn("Backend unreachable:", err.Error())
		return err
	}
	printlnFn("Backend is reachable.")
	return nil
}
