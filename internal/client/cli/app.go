package cli

import (
	"bufio"
	"context"
	"os"
	"sync"

	"github.com/fitly/fitly/internal/backend"
	"github.com/fitly/fitly/internal/client/clothes"
	"github.com/fitly/fitly/internal/logging"
)

// sessionAPI is the slice of the session store the screens depend on.
type sessionAPI interface {
	User() *backend.User
	Ready() <-chan struct{}
	OnChange(fn func())
	Login(ctx context.Context, email, password string) (*backend.User, error)
	Register(ctx context.Context, email, password string) (*backend.User, error)
	Logout(ctx context.Context) error
}

// wardrobeAPI is the slice of the clothes service the screens depend on.
type wardrobeAPI interface {
	Create(ctx context.Context, in clothes.CreateInput) error
	List(ctx context.Context, userID string) ([]clothes.ClothingItem, error)
	Ping(ctx context.Context) error
}

// uploaderAPI is the slice of the image uploader the add screen depends on.
type uploaderAPI interface {
	Acquire(ctx context.Context) (string, error)
	Upload(ctx context.Context, fileRef, ownerID string) (string, error)
}

// addForm holds the add screen's in-progress input. A failed submission
// keeps the form so the next 'add' resumes with the same values; a
// successful one discards it.
type addForm struct {
	name     string
	category string
	color    string
	imageRef string
}

type App struct {
	session  sessionAPI
	wardrobe wardrobeAPI
	uploader uploaderAPI
	log      logging.Logger
	reader   *bufio.Reader

	pending *addForm

	// mu guards the liveness state consulted by the auth-change listener.
	// Once closed, late notifications must not write to the terminal.
	mu         sync.Mutex
	closed     bool
	lastEmail  string
	signingOut bool
}

func NewApp(session sessionAPI, wardrobe wardrobeAPI, uploader uploaderAPI, log logging.Logger) *App {
	return &App{
		session:  session,
		wardrobe: wardrobe,
		uploader: uploader,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.User() != nil
}

// Run blocks until the user exits. Nothing is rendered before the session
// store resolves its initial state; an unauthenticated start and a restored
// session both land here through the same wait.
func (a *App) Run(ctx context.Context) {
	select {
	case <-a.session.Ready():
	case <-ctx.Done():
		return
	}

	if u := a.session.User(); u != nil {
		a.mu.Lock()
		a.lastEmail = u.Email
		a.mu.Unlock()
	}
	a.session.OnChange(a.notifyAuthChange)

	printlnFn("Fitly wardrobe CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	a.close()
}

// notifyAuthChange surfaces out-of-band sign-outs, e.g. a rejected token
// refresh. Explicit logouts report through the Logout screen instead, and
// a closed App swallows everything.
func (a *App) notifyAuthChange() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	u := a.session.User()
	if u == nil {
		if a.lastEmail != "" && !a.signingOut {
			printlnFn("Your session has ended; you are signed out.")
		}
		a.lastEmail = ""
		return
	}
	a.lastEmail = u.Email
}

func (a *App) status() string {
	if u := a.session.User(); u != nil {
		return " (" + u.Email + ")"
	}
	return ""
}

func (a *App) close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
}
