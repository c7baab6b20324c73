package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"focus-planner/internal/alarm"
	"focus-planner/internal/config"
	"focus-planner/internal/motivation"
	"focus-planner/internal/repository"
	"focus-planner/internal/service"
)

const (
	cbCompletePrefix   = "complete:"
	cbDeleteTaskPrefix = "deltask:"
	cbToggleRemPrefix  = "togglerem:"
	cbDeleteRemPrefix  = "delrem:"
	cbDismissPrefix    = "dismiss:"
	cbSnoozePrefix     = "snooze:"
)

var errNotOwner = errors.New("sender is not the bot owner")

// Bot aggregates the Telegram API with the planner services. It is also
// the notification surface of the alarm engine: the active alarm is a
// message with snooze/dismiss buttons in the owner's chat.
type Bot struct {
	api         *tgbotapi.BotAPI
	userRepo    *repository.UserRepository
	taskSvc     *service.TaskService
	reminderSvc *service.ReminderService
	statsSvc    *service.StatsService
	focusSvc    *service.FocusService
	config      *config.Config
	log         *zap.SugaredLogger

	session *alarm.Session

	mu            sync.Mutex
	conversations map[int64]*conversationState
	alarmMsgs     map[string]alarmMessage
}

func New(token string, userRepo *repository.UserRepository, taskSvc *service.TaskService, reminderSvc *service.ReminderService, statsSvc *service.StatsService, focusSvc *service.FocusService, cfg *config.Config, log *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Infow("bot authorized", "account", api.Self.UserName)

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		taskSvc:       taskSvc,
		reminderSvc:   reminderSvc,
		statsSvc:      statsSvc,
		focusSvc:      focusSvc,
		config:        cfg,
		log:           log,
		conversations: make(map[int64]*conversationState),
		alarmMsgs:     make(map[string]alarmMessage),
	}, nil
}

// SetAlarmSession installs the controller the snooze/dismiss buttons talk
// to. Wired after construction because the session needs the bot as its
// notifier.
func (b *Bot) SetAlarmSession(s *alarm.Session) {
	b.session = s
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Infow("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Errorw("handle callback", "err", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Errorw("handle message", "err", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if _, err := b.ensureOwner(ctx, msg.From); err != nil {
		if errors.Is(err, errNotOwner) {
			return b.sendPlain(msg.Chat.ID, "Sorry, this planner belongs to someone else.")
		}
		return err
	}

	if !msg.IsCommand() && isCancelInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled. What's next?")
	}

	if msg.IsCommand() {
		b.log.Infow("command", "from", msg.From.ID, "command", msg.Command())
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I didn't get that. Try /newtask to add a task, or /help for the full list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "tasks":
		return b.sendTaskList(ctx, msg.Chat.ID)
	case "complete":
		return b.handleComplete(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "remind":
		return b.startReminderConversation(ctx, msg)
	case "reminders":
		return b.sendReminderList(ctx, msg.Chat.ID)
	case "focus":
		return b.handleFocus(msg)
	case "stopfocus":
		return b.handleStopFocus(msg)
	case "agenda":
		return b.handleAgenda(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "motivate":
		quote := motivation.Random()
		return b.sendText(msg.Chat.ID, fmt.Sprintf("💬 <i>%s</i>\n— %s", escape(quote.Text), escape(quote.Author)))
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I'm your focus planner: tasks, reminders and Pomodoro in one place.</b>\n\nCommands:\n"+
			"• /newtask — add a task\n"+
			"• /tasks — list open tasks\n"+
			"• /remind — set a reminder for a task\n"+
			"• /reminders — manage reminders\n"+
			"• /focus — start a Pomodoro session\n"+
			"• /agenda — today's agenda\n"+
			"• /stats — last 7 days\n"+
			"• /motivate — a push in the right direction\n"+
			"• /help — all the details",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>How this works</b>\n" +
		"• /newtask — add a task step by step\n" +
		"• /tasks — open tasks with complete/delete buttons\n" +
		"• /complete &lt;id&gt; — finish a task by id (a unique prefix is enough)\n" +
		"• /delete &lt;id&gt; — remove a task and its reminders\n" +
		"• /remind — schedule a reminder: once, daily or on selected weekdays\n" +
		"• /reminders — toggle or delete reminders\n" +
		"• /focus — 25 min focus / 5 min break; /stopfocus to abort\n" +
		"• /agenda — what's on the plate today\n" +
		"• /stats — completed tasks and focus minutes, last 7 days\n" +
		"• /cancel — abort the current dialog\n\n" +
		"When a reminder fires, I'll ping you here with snooze and dismiss buttons. " +
		"One-shot reminders retire after dismissal; repeating ones come back on their next day."
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Give me a task id: /complete 1a2b3c4d")
	}

	task, err := b.taskSvc.ResolveTask(ctx, ref)
	if err != nil {
		return b.sendText(msg.Chat.ID, taskLookupError(err))
	}

	return b.completeTask(ctx, msg.Chat.ID, task.ID)
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Give me a task id: /delete 1a2b3c4d")
	}

	task, err := b.taskSvc.ResolveTask(ctx, ref)
	if err != nil {
		return b.sendText(msg.Chat.ID, taskLookupError(err))
	}

	return b.deleteTask(ctx, msg.Chat.ID, task.ID)
}

func (b *Bot) handleFocus(msg *tgbotapi.Message) error {
	if phase, remaining, running := b.focusSvc.Status(msg.Chat.ID); running {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("⏳ Already in a %s phase, %d min left. /stopfocus to abort.", phaseLabel(phase), int(remaining.Minutes())+1))
	}

	_, d, err := b.focusSvc.Start(msg.Chat.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Couldn't start: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🍅 Focus time! %d minutes on the clock — I'll tell you when to break.", int(d.Minutes())))
}

func (b *Bot) handleStopFocus(msg *tgbotapi.Message) error {
	if !b.focusSvc.Stop(msg.Chat.ID) {
		return b.sendText(msg.Chat.ID, "No focus session is running. /focus to start one.")
	}
	return b.sendText(msg.Chat.ID, "🛑 Focus session stopped.")
}

func (b *Bot) handleAgenda(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.statsSvc.DailyAgenda(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Couldn't build the agenda: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.statsSvc.WeeklySummary(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Couldn't build the summary: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

// SendDailyAgenda pushes the daily agenda to the owner. Used by the
// scheduled morning job.
func (b *Bot) SendDailyAgenda(ctx context.Context) error {
	owner, err := b.userRepo.Owner(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // nobody to report to yet
		}
		return err
	}
	text, err := b.statsSvc.DailyAgenda(ctx)
	if err != nil {
		return err
	}
	return b.sendText(owner.TelegramID, text)
}

// PushText delivers a plain message to a chat; used by the focus service
// for phase-change pings.
func (b *Bot) PushText(chatID int64, text string) {
	if err := b.sendText(chatID, text); err != nil {
		b.log.Warnw("push text", "chat", chatID, "err", err)
	}
}

// ensureOwner binds the bot to its first user and rejects everyone else.
func (b *Bot) ensureOwner(ctx context.Context, from *tgbotapi.User) (int64, error) {
	owner, err := b.userRepo.Owner(ctx)
	switch {
	case err == nil:
		if owner.TelegramID != from.ID {
			return 0, errNotOwner
		}
		if _, err := b.userRepo.UpdateProfile(ctx, owner, from.FirstName, from.LastName, from.UserName); err != nil {
			b.log.Warnw("refresh owner profile", "err", err)
		}
		return owner.TelegramID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		owner, err := b.userRepo.BindOwner(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
		if err != nil {
			return 0, err
		}
		b.log.Infow("owner bound", "telegram_id", owner.TelegramID)
		return owner.TelegramID, nil
	default:
		return 0, err
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendPlain(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func taskLookupError(err error) string {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "No task matches that id."
	case errors.Is(err, repository.ErrAmbiguousID):
		return "More than one task matches that prefix — add a few more characters."
	default:
		return fmt.Sprintf("Lookup failed: %s", escape(err.Error()))
	}
}
