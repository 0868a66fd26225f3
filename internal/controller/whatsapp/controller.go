package whatsapp

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/internal/infrastructure"
	"github.com/sebelasdpib2/photo-bot/internal/usecase"
	"github.com/sebelasdpib2/photo-bot/pkg/logger"
)

const (
	cmdUpload  = "!upload"
	cmdHelp    = "!help"
	cmdBantuan = "!bantuan"
	cmdInfo    = "!info"

	_sendTimeout = 30 * time.Second
	_queueSize   = 64
)

// MessageController handles inbound messages. Messages of one conversation are
// processed in arrival order by the same worker.
type MessageController struct {
	cache     usecase.RecentMessages
	resolver  usecase.AlbumResolverUseCase
	uploader  usecase.UploadUseCase
	messenger infrastructure.Messenger
	texts     Texts
	logger    logger.Interface

	workers  int
	queues   []chan entity.Message
	mu       sync.RWMutex
	closed   bool
	stopping chan struct{}
	stopOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	cache usecase.RecentMessages,
	resolver usecase.AlbumResolverUseCase,
	uploader usecase.UploadUseCase,
	messenger infrastructure.Messenger,
	texts Texts,
	l logger.Interface,
	workers int,
) *MessageController {
	if workers <= 0 {
		workers = 1
	}

	return &MessageController{
		cache:     cache,
		resolver:  resolver,
		uploader:  uploader,
		messenger: messenger,
		texts:     texts,
		logger:    l,
		workers:   workers,
		stopping:  make(chan struct{}),
	}
}

func (c *MessageController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("MessageController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	c.queues = make([]chan entity.Message, c.workers)
	for i := range c.queues {
		c.queues[i] = make(chan entity.Message, _queueSize)

		c.wg.Add(1)
		go c.worker(c.queues[i])
	}

	return nil
}

// HandleMessage queues msg for its conversation's worker. It blocks while the
// queue is full and drops the message once shutdown has begun.
func (c *MessageController) HandleMessage(msg entity.Message) {
	if msg.FromMe || msg.Broadcast {
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started.Load() || c.closed {
		c.logger.Warn("MessageController - HandleMessage - not running, message %s dropped", msg.ID)

		return
	}

	select {
	case c.queues[c.shard(msg.ConversationID)] <- msg:
	case <-c.stopping:
	}
}

func (c *MessageController) shard(conversationID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(conversationID))

	return int(h.Sum32() % uint32(len(c.queues))) //nolint:gosec // len(queues) > 0
}

func (c *MessageController) worker(queue <-chan entity.Message) {
	defer c.wg.Done()

	// читаем очередь, пока не закроется
	for msg := range queue {
		c.handle(c.ctx, msg)
	}
}

// handle runs one message to completion. It never panics.
func (c *MessageController) handle(ctx context.Context, msg entity.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(fmt.Errorf("panic %v", r), "MessageController - handle - panic")
			c.reply(ctx, msg.ConversationID, textInternalError)
		}
	}()

	// 1. запоминаем каждое входящее фото
	if record, ok := msg.ImageRecord(); ok {
		c.cache.Track(record)
	}

	if msg.Kind != entity.KindText {
		return
	}

	// 2. разбираем команду
	cmd := strings.ToLower(strings.TrimSpace(msg.Text))
	if !strings.HasPrefix(cmd, "!") {
		return
	}

	c.logger.Info("MessageController - handle - command %q from %s in %s", cmd, msg.ParticipantID, msg.ConversationID)

	switch cmd {
	case cmdUpload:
		c.upload(ctx, msg)
	case cmdHelp, cmdBantuan:
		c.reply(ctx, msg.ConversationID, c.texts.help())
	case cmdInfo:
		c.reply(ctx, msg.ConversationID, c.texts.info())
	default:
		c.reply(ctx, msg.ConversationID, unknownCommand(cmd))
	}
}

func (c *MessageController) upload(ctx context.Context, msg entity.Message) {
	// 1. определяем, какие фото загружать
	res, err := c.resolver.Resolve(msg)
	if err != nil {
		c.logger.Info("MessageController - upload - c.resolver.Resolve: %v", err)
		c.reply(ctx, msg.ConversationID, resolutionError(err))

		return
	}

	c.logger.Info("MessageController - upload - %d target(s) via %s, %d image(s) tracked", len(res.Targets), res.Strategy, c.cache.Len())

	// 2. сообщаем о начале загрузки
	c.reply(ctx, msg.ConversationID, progress(len(res.Targets)))

	// 3. загружаем по очереди и отправляем итог
	results := c.uploader.RunBatch(ctx, res.Targets)
	c.reply(ctx, msg.ConversationID, c.uploader.Summarize(results))
}

func (c *MessageController) reply(ctx context.Context, conversationID, text string) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), _sendTimeout)
	defer cancel()

	err := c.messenger.SendText(sendCtx, conversationID, text)
	if err != nil {
		c.logger.Error(err, "MessageController - reply - c.messenger.SendText")
	}
}

// Shutdown stops accepting messages and waits for queued ones to finish. If ctx
// expires first, in-flight work is cancelled.
func (c *MessageController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	c.stopOnce.Do(func() { close(c.stopping) })

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		for _, q := range c.queues {
			close(q)
		}
	}
	c.mu.Unlock()

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.cancel()

		return nil
	case <-ctx.Done():
		c.cancel()

		return fmt.Errorf("MessageController - Shutdown: %w", ctx.Err())
	}
}
