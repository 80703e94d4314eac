package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/ui/keys"
	"github.com/skilltracker/skt/internal/ui/styles"
)

// deletedCommentPlaceholder replaces the text of soft-deleted comments, which
// keep their place in the thread
const deletedCommentPlaceholder = "(comment deleted)"

// TaskViewerView shows one task record with its comment thread. The assignee
// can update status and progress; comment authors can edit and delete their
// own comments.
type TaskViewerView struct {
	ctx    Context
	styles *styles.Styles
	keys   keys.KeyMap

	taskID   int64
	task     *models.Task
	comments []models.Comment
	loaded   bool
	errMsg   string

	cursor    int // index into comments
	input     textinput.Model
	composing bool
	editingID int64 // nonzero while editing an existing comment

	busy bool

	width  int
	height int
}

type taskViewLoadedMsg struct {
	task     *models.Task
	comments []models.Comment
}

type commentsChangedMsg struct {
	comments []models.Comment
	err      error
}

type progressChangedMsg struct {
	task *models.Task
	err  error
}

func NewTaskViewerView(ctx Context, taskID int64) *TaskViewerView {
	input := textinput.New()
	input.Placeholder = "Write a comment"
	input.CharLimit = 1000

	return &TaskViewerView{
		ctx:    ctx,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		taskID: taskID,
		input:  input,
	}
}

func (v *TaskViewerView) Init() tea.Cmd {
	return v.load
}

func (v *TaskViewerView) load() tea.Msg {
	ctx := context.Background()
	task, err := v.ctx.API.Task(ctx, v.taskID)
	if err != nil {
		return errMsg{err}
	}
	comments, err := v.ctx.API.Comments(ctx, v.taskID)
	if err != nil {
		return errMsg{err}
	}
	return taskViewLoadedMsg{task: task, comments: comments}
}

func (v *TaskViewerView) reloadComments() tea.Cmd {
	return func() tea.Msg {
		comments, err := v.ctx.API.Comments(context.Background(), v.taskID)
		return commentsChangedMsg{comments: comments, err: err}
	}
}

func (v *TaskViewerView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case taskViewLoadedMsg:
		v.task = msg.task
		v.comments = msg.comments
		v.loaded = true
		return v, nil

	case errMsg:
		v.loaded = true
		v.errMsg = apperr.Message(msg.err)
		return v, nil

	case commentsChangedMsg:
		v.busy = false
		if msg.err != nil {
			v.errMsg = apperr.Message(msg.err)
			return v, nil
		}
		v.comments = msg.comments
		v.errMsg = ""
		if v.cursor >= len(v.comments) && len(v.comments) > 0 {
			v.cursor = len(v.comments) - 1
		}
		return v, nil

	case progressChangedMsg:
		v.busy = false
		if msg.err != nil {
			v.errMsg = apperr.Message(msg.err)
			return v, nil
		}
		v.task = msg.task
		v.errMsg = ""
		return v, nil

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		if v.composing {
			return v.updateComposing(msg)
		}
		return v.updateBrowsing(msg)
	}

	return v, nil
}

func (v *TaskViewerView) updateComposing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.composing = false
		v.editingID = 0
		v.input.Blur()
		v.input.Reset()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		text := strings.TrimSpace(v.input.Value())
		if text == "" {
			v.errMsg = "comment text is required"
			return v, nil
		}
		v.busy = true
		v.composing = false
		v.input.Blur()
		v.input.Reset()
		editID := v.editingID
		v.editingID = 0
		taskID := v.taskID
		return v, func() tea.Msg {
			ctx := context.Background()
			var err error
			if editID != 0 {
				err = v.ctx.API.UpdateComment(ctx, editID, text)
			} else {
				_, err = v.ctx.API.CreateComment(ctx, taskID, text)
			}
			if err != nil {
				return commentsChangedMsg{err: err}
			}
			comments, err := v.ctx.API.Comments(ctx, taskID)
			return commentsChangedMsg{comments: comments, err: err}
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *TaskViewerView) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToDashboard{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.comments)-1 {
			v.cursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.composing = true
		v.editingID = 0
		v.input.Reset()
		v.input.Focus()
		v.errMsg = ""
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if c, ok := v.ownComment(); ok {
			v.composing = true
			v.editingID = c.ID
			v.input.SetValue(c.Text)
			v.input.Focus()
			v.errMsg = ""
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if c, ok := v.ownComment(); ok {
			v.busy = true
			id := c.ID
			return v, func() tea.Msg {
				if err := v.ctx.API.DeleteComment(context.Background(), id); err != nil {
					return commentsChangedMsg{err: err}
				}
				comments, err := v.ctx.API.Comments(context.Background(), v.taskID)
				return commentsChangedMsg{comments: comments, err: err}
			}
		}
		return v, nil

	case msg.String() == "s":
		if v.isAssignee() {
			return v, v.cycleStatus()
		}
		return v, nil

	case msg.String() == "+", msg.String() == "=":
		if v.isAssignee() {
			return v, v.bumpProgress(10)
		}
		return v, nil

	case msg.String() == "-":
		if v.isAssignee() {
			return v, v.bumpProgress(-10)
		}
		return v, nil
	}

	return v, nil
}

// ownComment returns the selected comment when the current user authored it
// and it is not already deleted
func (v *TaskViewerView) ownComment() (*models.Comment, bool) {
	sess := v.ctx.Sessions.Current()
	if sess == nil || v.cursor >= len(v.comments) {
		return nil, false
	}
	c := &v.comments[v.cursor]
	if c.Deleted || c.UserID != sess.UserID {
		return nil, false
	}
	return c, true
}

func (v *TaskViewerView) isAssignee() bool {
	sess := v.ctx.Sessions.Current()
	return sess != nil && v.task != nil && v.task.EmployeeID == sess.UserID
}

func (v *TaskViewerView) cycleStatus() tea.Cmd {
	next := models.StatusPending
	switch v.task.Status {
	case models.StatusPending:
		next = models.StatusInProgress
	case models.StatusInProgress:
		next = models.StatusDone
	}
	return v.updateProgress(next, v.task.Progress)
}

func (v *TaskViewerView) bumpProgress(delta int) tea.Cmd {
	p := v.task.Progress + delta
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return v.updateProgress(v.task.Status, p)
}

func (v *TaskViewerView) updateProgress(status models.TaskStatus, progress int) tea.Cmd {
	v.busy = true
	id := v.taskID
	return func() tea.Msg {
		task, err := v.ctx.API.UpdateTaskProgress(context.Background(), id, status, progress)
		return progressChangedMsg{task: task, err: err}
	}
}

func (v *TaskViewerView) View() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}
	if v.task == nil {
		return styles.CenterView(s.ErrorText.Render(v.errMsg), v.width, v.height)
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(v.task.Title))
	b.WriteString("\n")

	meta := fmt.Sprintf("%s • %d%%", v.task.Status, v.task.Progress)
	u := models.DeadlineUrgency(v.task.Deadline, time.Now())
	if v.task.Deadline != nil {
		meta += " • due " + v.task.Deadline.Format("2006-01-02")
		if label := u.Label(); label != "" {
			meta += " " + s.UrgencyStyle(u).Render("("+label+")")
		}
	}
	b.WriteString(s.TitleMuted.Render(meta))
	b.WriteString("\n\n")

	if v.task.Description != "" {
		width := styles.Clamp(styles.ContentWidth(v.width)-4, 20, styles.MaxWidth)
		b.WriteString(s.ListItem.Width(width).Render(v.task.Description))
		b.WriteString("\n\n")
	}

	b.WriteString(s.Title.Render("Comments"))
	b.WriteString("\n")
	if len(v.comments) == 0 {
		b.WriteString(s.TitleMuted.Render("  no comments yet"))
		b.WriteString("\n")
	}
	sess := v.ctx.Sessions.Current()
	for i, c := range v.comments {
		text := c.Text
		if c.Deleted {
			text = deletedCommentPlaceholder
		}
		author := fmt.Sprintf("user %d", c.UserID)
		if sess != nil && c.UserID == sess.UserID {
			author = "you"
		}
		line := fmt.Sprintf("%s %s — %s",
			c.CreatedAt.Format("Jan 2 15:04"), author, text)
		if i == v.cursor && !v.composing {
			b.WriteString(s.ListSelected.Render(line))
		} else if c.Deleted {
			b.WriteString(s.TitleMuted.Render("  " + line))
		} else {
			b.WriteString(s.ListItem.Render(line))
		}
		b.WriteString("\n")
	}

	if v.composing {
		b.WriteString("\n")
		label := "New comment:"
		if v.editingID != 0 {
			label = "Edit comment:"
		}
		b.WriteString(label)
		b.WriteString("\n")
		width := styles.Clamp(styles.ContentWidth(v.width)-6, 20, 60)
		b.WriteString(s.InputFocused.Width(width).Render(v.input.View()))
		b.WriteString("\n")
	}

	if v.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(s.ErrorText.Render(v.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	hint := "n: comment • e: edit own • d: delete own • Esc: back"
	if v.isAssignee() {
		hint = "s: status • +/-: progress • " + hint
	}
	if v.composing {
		hint = "↵: save • Esc: cancel"
	}
	b.WriteString(s.Help.Render(hint))

	return styles.CenterView(b.String(), v.width, v.height)
}
