package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/fieldscope/siteline/internal/api"
	"github.com/fieldscope/siteline/internal/bus"
	"github.com/fieldscope/siteline/internal/config"
	"github.com/fieldscope/siteline/internal/feed"
	"github.com/fieldscope/siteline/internal/outbox"
	"github.com/fieldscope/siteline/internal/status"
	"github.com/fieldscope/siteline/internal/tui/model"
	"github.com/fieldscope/siteline/internal/tui/ui"
	"github.com/fieldscope/siteline/internal/tui/views"
)

const flashDuration = 5 * time.Second

// Deps bundles everything the TUI needs to run.
type Deps struct {
	Profile  string
	SiteID   string // optional: open this site immediately
	Config   *config.Config
	Bus      *bus.Bus
	Store    *feed.Store
	Gate     *feed.Gate
	Scroll   *feed.Coordinator
	Sender   *outbox.Sender
	Client   *api.Client
	Machine  *status.Machine
	Identity outbox.Identity
	Logger   *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app        *tview.Application
	pages      *tview.Pages
	theme      *ui.Theme
	deps       Deps
	flash      *model.Flash
	statusBar  *views.StatusBar
	feedView   *views.FeedView
	composer   *views.Composer
	sitePrompt *views.SitePrompt
	cmdInput   *tview.InputField
	siteID     string
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(deps Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		theme:      theme,
		deps:       deps,
		flash:      &model.Flash{},
		statusBar:  views.NewStatusBar(theme),
		feedView:   views.NewFeedView(theme),
		composer:   views.NewComposer(theme),
		sitePrompt: views.NewSitePrompt(theme),
		ctx:        ctx,
		cancel:     cancel,
	}

	a.feedView.SetOwnUserID(deps.Identity.UserID)
	a.statusBar.SetProfile(deps.Profile)
	a.statusBar.SetStatus(string(deps.Machine.Current()))

	a.setupCommandInput()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupCommandInput() {
	input := tview.NewInputField().
		SetLabel(" : ").
		SetFieldWidth(0)
	input.SetBackgroundColor(a.theme.BgColor)
	input.SetFieldBackgroundColor(a.theme.BgColor)
	input.SetFieldTextColor(a.theme.FgColor)
	input.SetLabelColor(a.theme.MenuKeyColor)

	input.SetDoneFunc(func(key tcell.Key) {
		text := input.GetText()
		input.SetText("")
		a.pages.HidePage("command")
		a.app.SetFocus(a.feedView)
		if key == tcell.KeyEnter && text != "" {
			a.runCommand(ParseCommand(text))
		}
	})

	a.cmdInput = input
}

func (a *App) setupCallbacks() {
	a.sitePrompt.SetOnOpen(func(siteID string) {
		a.openSite(siteID)
	})

	a.composer.SetOnSend(func(text string) {
		attachments := a.composer.Attachments()
		go func() {
			if _, err := a.deps.Sender.Send(a.ctx, text, attachments); err != nil {
				a.flash.SetError("Send failed: "+err.Error(), flashDuration)
				a.app.QueueUpdateDraw(a.syncFlash)
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.composer.Reset()
				a.renderFeed(false)
				a.syncFlash()
			})
		}()
	})

	a.feedView.SetOnScroll(func(rowOffset int) {
		cursor := a.deps.Store.Cursor()
		if a.deps.Gate.Observe(rowOffset, cursor.HasNext) {
			// siteID is only touched on the event loop; capture it here so
			// the fetch goroutine never reads it, and so a site switch while
			// the fetch is in flight can be detected before merging.
			go a.fetchOlder(a.siteID, cursor.CurrentPage+1)
		}
	})
}

func (a *App) setupLayout() {
	feedFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.feedView, 0, 1, true).
		AddItem(a.composer, 3, 0, false)

	a.pages.AddPage("open", a.sitePrompt, true, true)
	a.pages.AddPage("feed", feedFlex, true, false)
	a.pages.AddPage("command", newCommandOverlay(a.cmdInput), true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			switch currentPage {
			case "command":
				a.pages.HidePage("command")
				a.app.SetFocus(a.feedView)
				return nil
			case "feed":
				a.pages.SwitchToPage("open")
				a.app.SetFocus(a.sitePrompt.Input())
				return nil
			}
		}

		// Let text input widgets handle all keys normally.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}

		if event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case 'q':
				a.app.Stop()
				return nil
			case ':':
				a.pages.ShowPage("command")
				a.app.SetFocus(a.cmdInput)
				return nil
			case 'i':
				if currentPage == "feed" {
					a.app.SetFocus(a.composer.InputField)
					return nil
				}
			case 'r':
				if currentPage == "feed" {
					a.refresh()
					return nil
				}
			}
		}

		return event
	})
}

// newCommandOverlay pins the command input to the bottom of the screen.
func newCommandOverlay(input *tview.InputField) tview.Primitive {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(input, 1, 0, true)
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "open":
		if cmd.Args != "" {
			a.openSite(cmd.Args)
		}
	case "attach":
		if cmd.Args == "" {
			a.flash.SetError("attach needs a file path", flashDuration)
		} else if err := a.composer.Attach(cmd.Args); err != nil {
			a.flash.SetError("Attach failed: "+err.Error(), flashDuration)
		} else {
			a.flash.Set("Attached "+cmd.Args, flashDuration)
		}
	case "refresh":
		a.refresh()
	case "quit", "q":
		a.app.Stop()
	default:
		a.flash.SetError("Unknown command: "+cmd.Name, flashDuration)
	}
	a.syncFlash()
}

// openSite loads page 1 of a site's feed and switches to the feed page.
func (a *App) openSite(siteID string) {
	if err := a.deps.Machine.Transition(status.Loading); err != nil {
		a.deps.Logger.Warn("transition rejected", zap.Error(err))
		return
	}
	a.statusBar.SetStatus(string(a.deps.Machine.Current()))

	go func() {
		page, err := a.deps.Client.FetchSitePage(a.ctx, siteID, 1, a.deps.Config.PageSize)
		if err != nil {
			_ = a.deps.Machine.Transition(status.Error)
			a.flash.SetError("Load failed: "+err.Error(), flashDuration)
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetStatus(string(a.deps.Machine.Current()))
				a.syncFlash()
			})
			return
		}

		groups, cursor := api.ToFeedGroups(page)
		a.deps.Gate.Suppress()
		a.deps.Store.ReplaceAll(groups, cursor)
		a.deps.Scroll.OnInitialLoad()
		_ = a.deps.Machine.Transition(status.Ready)

		a.app.QueueUpdateDraw(func() {
			a.siteID = siteID
			name := page.Site.Name
			if name == "" {
				name = siteID
			}
			a.feedView.SetSiteName(name)
			a.renderFeed(false)
			a.statusBar.SetStatus(string(a.deps.Machine.Current()))
			a.pages.SwitchToPage("feed")
			a.app.SetFocus(a.feedView)
		})
	}()
}

// refresh reloads page 1 of the current site.
func (a *App) refresh() {
	if a.siteID == "" {
		return
	}
	a.openSite(a.siteID)
}

// fetchOlder loads the given (older) page of siteID and merges it above the
// current feed. siteID and page are captured on the event loop at trigger
// time; the merge is skipped if the user switched sites in the meantime.
func (a *App) fetchOlder(siteID string, pageNum int) {
	defer a.deps.Gate.FinishFetch()

	a.app.QueueUpdateDraw(func() { a.statusBar.SetFetching(true) })

	page, err := a.deps.Client.FetchSitePage(a.ctx, siteID, pageNum, a.deps.Config.PageSize)
	if err != nil {
		a.flash.SetError("History fetch failed: "+err.Error(), flashDuration)
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetFetching(false)
			a.syncFlash()
		})
		return
	}

	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetFetching(false)
		if a.siteID != siteID {
			return // feed switched while the fetch was in flight
		}
		groups, merged := api.ToFeedGroups(page)
		added := a.deps.Store.MergeOlderPage(groups, merged)
		a.deps.Scroll.OnOlderMerge()
		a.deps.Logger.Debug("older page merged",
			zap.Int("page", merged.CurrentPage),
			zap.Int("comments_added", added))
		a.renderFeed(true)
	})
}

// renderFeed redraws the feed view from the store and performs any
// pending auto scroll. Scrolling to the bottom after the first load is
// what arms the history gate. holdView re-renders without moving the
// visible comments, for older-page merges.
func (a *App) renderFeed(holdView bool) {
	entries := a.deps.Store.View()
	if holdView {
		a.feedView.UpdateHoldingView(entries, time.Now())
	} else {
		a.feedView.Update(entries, time.Now())
	}

	cursor := a.deps.Store.Cursor()
	a.statusBar.SetPage(cursor.CurrentPage, cursor.TotalPages)

	if a.deps.Scroll.ShouldScroll(len(entries)) {
		a.feedView.ScrollToEnd()
		a.deps.Scroll.ScrollCompleted()
	}
}

func (a *App) syncFlash() {
	msg, isErr := a.flash.Get()
	a.statusBar.SetFlash(msg, isErr)
}

// watchEvents mirrors bus events into the status bar.
func (a *App) watchEvents() {
	events, unsubscribe := a.deps.Bus.Subscribe("feed.", 16)
	go func() {
		defer unsubscribe()
		for {
			select {
			case evt := <-events:
				a.app.QueueUpdateDraw(func() {
					if change, ok := evt.Payload.(status.StatusChange); ok {
						a.statusBar.SetStatus(string(change.To))
					}
					a.syncFlash()
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// Run starts the TUI application.
func (a *App) Run() error {
	a.watchEvents()

	if a.deps.SiteID != "" {
		a.openSite(a.deps.SiteID)
	}

	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
