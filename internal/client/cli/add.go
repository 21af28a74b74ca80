package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fitly/fitly/internal/client/clothes"
	"github.com/fitly/fitly/internal/common"
)

// promptWithDefault shows the retained value, when there is one, and keeps
// it on an empty answer.
func (a *App) promptWithDefault(label, current string) (string, error) {
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	answer, err := getSimpleText(a.reader, label, os.Stdout)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

// Add walks the user through a new clothing item: name and category are
// required, color and a photo are optional.
//
// A failed photo upload degrades to saving the item without one. A failed
// save keeps the form, so the next 'add' resumes with the same values; a
// successful save discards it.
func (a *App) Add(ctx context.Context) error {
	user := a.session.User()
	if user == nil {
		printlnFn("Sign in first.")
		return common.ErrNotSignedIn
	}

	form := a.pending
	if form == nil {
		form = &addForm{}
	} else {
		printlnFn("Resuming the unsaved item. Press Enter to keep a value.")
	}
	a.pending = nil

	var err error
	if form.name, err = a.promptWithDefault("Enter name", form.name); err != nil {
		return err
	}
	printlnFn("Suggested categories:", strings.Join(clothes.Categories, ", "))
	if form.category, err = a.promptWithDefault("Enter category", form.category); err != nil {
		return err
	}
	if form.color, err = a.promptWithDefault("Enter color (optional)", form.color); err != nil {
		return err
	}

	if form.name == "" || form.category == "" {
		printlnFn("Name and category are required.")
		a.pending = form
		return common.NewError(common.KindValidation, "name and category are required", nil)
	}

	if form.imageRef == "" {
		a.acquireImage(ctx, form)
	} else {
		printlnFn("Keeping the previously selected image.")
	}

	imageURL := ""
	if form.imageRef != "" {
		url, err := a.uploader.Upload(ctx, form.imageRef, user.ID)
		if err != nil {
			// The wardrobe survives without photos.
			printlnFn("Image upload failed; saving the item without a photo.")
			form.imageRef = ""
		} else {
			imageURL = url
		}
	}

	in := clothes.CreateInput{
		Name:     form.name,
		Category: form.category,
		Color:    form.color,
		ImageURL: imageURL,
		UserID:   user.ID,
	}
	if err := a.wardrobe.Create(ctx, in); err != nil {
		printlnFn("Could not save the item:", err.Error())
		a.pending = form
		return err
	}

	printlnFn("Added", form.name+".")
	return nil
}

// acquireImage runs one picker session and stores the selected local
// reference on the form. Declining, cancelling and permission denial all
// leave the form without an image.
func (a *App) acquireImage(ctx context.Context, form *addForm) {
	answer, err := getSimpleText(a.reader, "Attach an image? (y/N)", os.Stdout)
	if err != nil || !strings.EqualFold(answer, "y") {
		return
	}

	ref, err := a.uploader.Acquire(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoSelection) {
			printlnFn("No image selected.")
		} else {
			printlnFn("Image selection failed:", err.Error())
		}
		return
	}
	form.imageRef = ref
	printlnFn("Selected", ref)
}
