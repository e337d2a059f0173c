// Package bot is the Telegram front end. It receives commands and
// replies in chat, correlates numbered-list replies with the message
// they answer, and drives the search, download, and restructure
// workflows.
package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/couchpilot/couchpilot/internal/config"
	"github.com/couchpilot/couchpilot/internal/imdb"
	"github.com/couchpilot/couchpilot/internal/jackett"
	"github.com/couchpilot/couchpilot/internal/restructure"
	"github.com/couchpilot/couchpilot/internal/storage"
	"github.com/couchpilot/couchpilot/internal/transmission"
	"github.com/couchpilot/couchpilot/internal/version"
)

const imdbURLPrefix = "https://www.imdb.com"

// Bot wires the Telegram API to the download pipeline.
type Bot struct {
	api    *tgbotapi.BotAPI
	log    zerolog.Logger
	oracle restructure.Oracle
	imdb   *imdb.Client

	// cfg and the derived clients are swapped atomically on Reload.
	mu           sync.RWMutex
	cfg          config.Config
	transmission *transmission.Client
	jackett      *jackett.Client

	searches     pending[[]jackett.Result]
	torrentLists pending[[]int64]
	fileLists    pending[[]string]
	plans        pending[restructure.Plan]
}

// New authenticates against the Telegram API and builds the pipeline
// clients from cfg.
func New(cfg config.Config, oracle restructure.Oracle, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	b := &Bot{
		api:    api,
		log:    log,
		oracle: oracle,
		imdb:   imdb.NewClient(),
	}
	b.apply(cfg)
	return b, nil
}

// Reload swaps in a new configuration. The Telegram token is fixed at
// startup; a token change needs a restart.
func (b *Bot) Reload(cfg config.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cfg.Telegram.Token != b.cfg.Telegram.Token {
		b.log.Warn().Msg("telegram token changed, restart to apply")
		cfg.Telegram.Token = b.cfg.Telegram.Token
	}
	b.applyLocked(cfg)
	b.log.Info().Msg("configuration reloaded")
}

func (b *Bot) apply(cfg config.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applyLocked(cfg)
}

func (b *Bot) applyLocked(cfg config.Config) {
	b.cfg = cfg
	b.transmission = transmission.NewClient(cfg.Transmission.URL, cfg.Transmission.Credentials)
	b.jackett = jackett.NewClient(cfg.Jackett.URL, cfg.Jackett.APIKey, cfg.Jackett.DataDir)
}

func (b *Bot) snapshot() (config.Config, *transmission.Client, *jackett.Client) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg, b.transmission, b.jackett
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	b.log.Info().Str("username", b.api.Self.UserName).Msg("bot started")
	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		b.handleMessage(ctx, update.Message)
	}
	return ctx.Err()
}

// response is what a handler wants sent back: the text, whether it
// carries HTML markup, and an optional callback run with the sent
// message ID so replies to it can be correlated later.
type response struct {
	text  string
	html  bool
	store func(messageID int)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return
	}
	prefix := strings.TrimSuffix(fields[0], "@"+b.api.Self.UserName)

	if prefix == "/chat-id" {
		b.reply(msg, response{text: fmt.Sprintf("Chat ID: %d", msg.Chat.ID)})
		return
	}

	if !b.allowed(msg.Chat.ID) {
		b.log.Debug().Int64("chat_id", msg.Chat.ID).Msg("ignoring message from disallowed chat")
		return
	}

	if msg.ReplyToMessage != nil && b.handleReply(ctx, msg, prefix, fields) {
		return
	}

	resp, err := b.dispatch(ctx, msg, prefix, fields)
	if err != nil {
		b.replyErr(msg, err)
		return
	}
	if resp.text != "" {
		b.reply(msg, resp)
	}
}

func (b *Bot) allowed(chatID int64) bool {
	cfg, _, _ := b.snapshot()
	if len(cfg.Telegram.AllowedChats) == 0 {
		return true
	}
	for _, id := range cfg.Telegram.AllowedChats {
		if id == chatID {
			return true
		}
	}
	return false
}

// handleReply resolves a reply against the pending lists. It reports
// whether the replied-to message was one of ours; unmatched replies
// fall through to command dispatch.
func (b *Bot) handleReply(ctx context.Context, msg *tgbotapi.Message, prefix string, fields []string) bool {
	replyID := msg.ReplyToMessage.MessageID

	if paths, ok := b.fileLists.find(replyID); ok {
		text, err := b.deleteFile(prefix, paths)
		b.replyOutcome(msg, text, err)
		return true
	}
	if ids, ok := b.torrentLists.find(replyID); ok {
		text, err := b.deleteTorrent(ctx, prefix, ids)
		b.replyOutcome(msg, text, err)
		return true
	}
	if plan, ok := b.plans.find(replyID); ok {
		b.confirmPlan(msg, replyID, plan)
		return true
	}
	if results, ok := b.searches.find(replyID); ok {
		text, err := b.pickResult(ctx, prefix, fields, results)
		b.replyOutcome(msg, text, err)
		return true
	}
	return false
}

func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message, prefix string, fields []string) (response, error) {
	// A bare IMDb link works with or without the /imdb command.
	if url, ok := imdbArg(prefix, fields); ok {
		return b.searchFromIMDb(ctx, url)
	}

	switch prefix {
	case "/help":
		return response{text: helpText}, nil

	case "/search":
		if len(fields) < 2 {
			return response{}, errors.New("pass the movie/TV after command (/search Matrix 1999)")
		}
		return b.search(ctx, strings.Join(fields[1:], " "))

	case "/imdb":
		return response{}, errors.New("send the IMDb link after command (/imdb https://www.imdb.com/title/...)")

	case "/torrent-tv":
		return b.addTorrent(ctx, fields, restructure.KindTV)

	case "/torrent-movie":
		return b.addTorrent(ctx, fields, restructure.KindMovie)

	case "/status":
		_, tr, _ := b.snapshot()
		torrents, err := tr.Torrents(ctx)
		if err != nil {
			return response{}, err
		}
		return response{text: formatStatus(torrents)}, nil

	case "/delete-torrent":
		return b.listTorrents(ctx, nil)

	case "/delete-tv":
		kind := restructure.KindTV
		return b.listFiles(kind)

	case "/delete-movie":
		kind := restructure.KindMovie
		return b.listFiles(kind)

	case "/restructure":
		if len(fields) < 2 {
			return response{}, errors.New("usage: /restructure <tv|movie>")
		}
		return b.restructure(ctx, fields[1])

	case "/stop-seed":
		_, tr, _ := b.snapshot()
		if err := tr.StopAll(ctx); err != nil {
			return response{}, err
		}
		return response{text: "⏹️ Stopped seeding for all downloads"}, nil

	case "/storage":
		report, err := storage.Report()
		if err != nil {
			return response{}, err
		}
		return response{text: report}, nil

	case "/version":
		return versionResponse(ctx), nil

	default:
		return response{}, errors.New("🤷 I didn't get it!")
	}
}

// imdbArg finds an IMDb URL in the first or last token.
func imdbArg(prefix string, fields []string) (string, bool) {
	if strings.HasPrefix(prefix, imdbURLPrefix) {
		return prefix, true
	}
	last := fields[len(fields)-1]
	if strings.HasPrefix(last, imdbURLPrefix) {
		return last, true
	}
	return "", false
}

func (b *Bot) search(ctx context.Context, query string) (response, error) {
	_, _, jk := b.snapshot()
	results, err := jk.Search(ctx, query)
	if err != nil {
		return response{}, err
	}
	return response{
		text: formatSearchResults(results),
		html: true,
		store: func(messageID int) {
			b.searches.add(messageID, results)
		},
	}, nil
}

func (b *Bot) searchFromIMDb(ctx context.Context, url string) (response, error) {
	title, err := b.imdb.Title(ctx, url)
	if err != nil {
		return response{}, err
	}
	b.log.Debug().Str("title", title).Msg("resolved imdb link")
	return b.search(ctx, title)
}

func (b *Bot) addTorrent(ctx context.Context, fields []string, kind restructure.MediaKind) (response, error) {
	if len(fields) < 2 {
		return response{}, fmt.Errorf("send the magnet-url after command (/torrent-%s magnet_url)", kind)
	}

	cfg, tr, _ := b.snapshot()
	dir := cfg.Transmission.TVPath
	if kind == restructure.KindMovie {
		dir = cfg.Transmission.MoviePath
	}
	if err := tr.AddMagnet(ctx, fields[1], dir); err != nil {
		return response{}, err
	}
	return response{text: "🧲 Added torrent"}, nil
}

// pickResult handles a reply to a search list: a bare index, or
// "tv N" / "movie N" to force the kind when the indexer categories
// don't decide it.
func (b *Bot) pickResult(ctx context.Context, prefix string, fields []string, results []jackett.Result) (string, error) {
	var forced *restructure.MediaKind
	indexToken := prefix
	if kind, err := restructure.ParseKind(prefix); err == nil {
		forced = &kind
		indexToken = fields[len(fields)-1]
	}

	index, err := strconv.Atoi(indexToken)
	if err != nil {
		return "", errors.New("not a number.\nPossible solutions: (index), movie (index) or tv (index)")
	}
	if index < 1 || index > len(results) {
		return "", fmt.Errorf("index %d is out of range", index)
	}
	result := results[index-1]

	kind, known := result.Kind()
	if forced != nil {
		kind = *forced
	} else if !known {
		return "", errors.New("no category for given torrent.\nReply with tv (index) or movie (index) to force it")
	}

	cfg, tr, jk := b.snapshot()
	dir := cfg.Transmission.TVPath
	if kind == restructure.KindMovie {
		dir = cfg.Transmission.MoviePath
	}

	if result.MagnetURI != "" {
		if err := tr.AddMagnet(ctx, result.MagnetURI, dir); err != nil {
			return "", err
		}
		return "🧲 Added torrent", nil
	}
	if result.Link == "" {
		return "", errors.New("torrent has neither a magnet URI nor a download link")
	}

	loc, err := jk.ResolveLocation(ctx, result.Link)
	if err != nil {
		return "", err
	}
	if loc.Magnet {
		err = tr.AddMagnet(ctx, loc.Content, dir)
	} else {
		err = tr.AddMetainfo(ctx, loc.Content, dir)
	}
	if err != nil {
		return "", err
	}
	return "🧲 Added torrent", nil
}

func (b *Bot) listTorrents(ctx context.Context, filter *restructure.MediaKind) (response, error) {
	cfg, tr, _ := b.snapshot()
	torrents, err := tr.Torrents(ctx)
	if err != nil {
		return response{}, err
	}

	text, ids := formatTorrentList(torrents, filter, cfg.Transmission.TVPath, cfg.Transmission.MoviePath)
	resp := response{text: text}
	if len(ids) > 0 {
		resp.store = func(messageID int) {
			b.torrentLists.add(messageID, ids)
		}
	}
	return resp, nil
}

func (b *Bot) listFiles(kind restructure.MediaKind) (response, error) {
	cfg, _, _ := b.snapshot()
	root := cfg.TVRoot()
	if kind == restructure.KindMovie {
		root = cfg.MovieRoot()
	}
	if root == "" {
		return response{}, fmt.Errorf("no %s path configured", kind)
	}

	paths, err := listDirectory(root)
	if err != nil {
		return response{}, err
	}

	text, paths := formatFileList(paths)
	resp := response{text: text}
	if len(paths) > 0 {
		resp.store = func(messageID int) {
			b.fileLists.add(messageID, paths)
		}
	}
	return resp, nil
}

func (b *Bot) deleteTorrent(ctx context.Context, prefix string, ids []int64) (string, error) {
	index, err := strconv.Atoi(prefix)
	if err != nil || index < 1 || index > len(ids) {
		return "", errors.New("invalid index")
	}

	_, tr, _ := b.snapshot()
	if err := tr.Remove(ctx, []int64{ids[index-1]}, true); err != nil {
		return "", err
	}
	return "🗑️ Torrent deleted", nil
}

func (b *Bot) deleteFile(prefix string, paths []string) (string, error) {
	index, err := strconv.Atoi(prefix)
	if err != nil || index < 1 || index > len(paths) {
		return "", errors.New("invalid index")
	}
	path := paths[index-1]

	info, err := os.Stat(path)
	if err != nil {
		return "", errors.New("path does not exist")
	}
	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return "", fmt.Errorf("failed to delete directory: %w", err)
		}
		return "🗑️ Directory deleted: " + filepath.Base(path), nil
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to delete file: %w", err)
	}
	return "🗑️ File deleted: " + filepath.Base(path), nil
}

func (b *Bot) restructure(ctx context.Context, kindArg string) (response, error) {
	kind, err := restructure.ParseKind(kindArg)
	if err != nil {
		return response{}, errors.New("invalid media type. Use 'tv' or 'movie'")
	}

	cfg, _, _ := b.snapshot()
	root := cfg.TVRoot()
	if kind == restructure.KindMovie {
		root = cfg.MovieRoot()
	}
	if root == "" {
		return response{}, fmt.Errorf("no %s path configured", kind)
	}

	plan, err := restructure.BuildPlan(ctx, kind, root, b.oracle)
	if err != nil {
		return response{}, err
	}

	resp := response{text: restructure.Render(plan)}
	if !plan.Empty() {
		resp.store = func(messageID int) {
			b.plans.add(messageID, plan)
		}
	}
	return resp, nil
}

// confirmPlan handles a reply to a rendered restructure plan. A cancel
// discards the plan; a valid selection executes it; anything else
// leaves the plan pending so the user can try again.
func (b *Bot) confirmPlan(msg *tgbotapi.Message, planMessageID int, plan restructure.Plan) {
	operations, err := restructure.Interpret(msg.Text, plan)
	switch {
	case errors.Is(err, restructure.ErrCancelled):
		b.plans.remove(planMessageID)
		b.reply(msg, response{text: "❌ Restructure cancelled"})
	case err != nil:
		b.replyErr(msg, err)
	default:
		b.plans.remove(planMessageID)
		outcome := restructure.Execute(operations)
		if outcome.Failed() {
			b.replyErr(msg, errors.New(outcome.Summary()))
			return
		}
		b.reply(msg, response{text: outcome.Summary()})
	}
}

func versionResponse(ctx context.Context) response {
	text := "couchpilot " + version.Version
	info, err := version.CheckForUpdate(ctx)
	switch {
	case err != nil:
		text += "\n(update check failed)"
	case info.UpdateAvailable:
		text += fmt.Sprintf("\n⬆️ Update available: %s", info.LatestVersion)
	default:
		text += "\n✅ Up to date"
	}
	return response{text: text}
}

func (b *Bot) replyOutcome(msg *tgbotapi.Message, text string, err error) {
	if err != nil {
		b.replyErr(msg, err)
		return
	}
	b.reply(msg, response{text: text})
}

func (b *Bot) replyErr(msg *tgbotapi.Message, err error) {
	b.reply(msg, response{text: "❌ " + err.Error()})
}

func (b *Bot) reply(msg *tgbotapi.Message, r response) {
	out := tgbotapi.NewMessage(msg.Chat.ID, r.text)
	out.ReplyToMessageID = msg.MessageID
	if r.html {
		out.ParseMode = tgbotapi.ModeHTML
	}

	sent, err := b.api.Send(out)
	if err != nil {
		b.log.Error().Err(err).Msg("failed to send reply")
		return
	}
	if r.store != nil {
		r.store(sent.MessageID)
	}
}
