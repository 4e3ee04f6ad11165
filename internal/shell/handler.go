// Package shell provides the interactive shell interface and input processing
// for StudioShell. It routes plain text to the conversation coordinator and
// backslash commands to the work, feedback, brand, and view components.
package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/abiosoft/ishell/v2"
	"golang.design/x/clipboard"

	studioctx "studioshell/internal/context"
	"studioshell/internal/logger"
	"studioshell/internal/services"
	"studioshell/internal/view"
	"studioshell/pkg/studiotypes"
)

var (
	coordinator *view.ModeCoordinator
	messageLog  *view.MessageLog
	renderer    *view.Renderer

	// Work browser listing state: the last visible page and its query.
	lastVisible []studiotypes.RecentWorkEntry
	lastQuery   string

	clipboardOnce sync.Once
	clipboardErr  error
)

// console is the output surface command handlers print to. *ishell.Context
// satisfies it; tests substitute a capture.
type console interface {
	Print(val ...interface{})
	Println(val ...interface{})
	Stop()
}

// GetGlobalContext returns the global context instance for external access.
func GetGlobalContext() *studioctx.StudioContext {
	return studioctx.GetGlobalContext().(*studioctx.StudioContext)
}

// InitializeServices sets up all required services for the StudioShell
// environment. Configuration loads first; everything else reads it.
func InitializeServices(testMode bool, baseURL string) error {
	globalCtx := GetGlobalContext()
	globalCtx.SetTestMode(testMode)

	registry := services.GetGlobalRegistry()

	configService := services.NewConfigurationService()
	if err := registry.RegisterService(configService); err != nil {
		return err
	}
	if err := configService.Initialize(globalCtx); err != nil {
		return err
	}

	// CLI flag overrides any configured base URL.
	if baseURL != "" {
		globalCtx.SetConfigValue(studioctx.ConfigKeyBaseURL, baseURL)
	}

	var identitySource services.IdentitySource
	if pipePath, ok := globalCtx.GetConfigValue(studioctx.ConfigKeyIdentityPipe); ok && pipePath != "" {
		identitySource = services.NewPipeIdentitySource(pipePath)
	}

	ordered := []studiotypes.Service{
		services.NewAPIClientService(),
		services.NewIdentityService(identitySource),
		services.NewConversationService(),
		services.NewWorkService(),
		services.NewFeedbackService(),
		services.NewBrandService(),
	}
	for _, service := range ordered {
		if err := registry.RegisterService(service); err != nil {
			return err
		}
		if err := service.Initialize(globalCtx); err != nil {
			return err
		}
	}

	return initializeViews()
}

// initializeViews builds the region layout, the mode coordinator, the message
// log, and the renderer.
func initializeViews() error {
	page := view.NewRegion("page")
	toolRoot := view.NewRegion("tool-root")
	browserRoot := view.NewRegion("browser-root")
	browserHeader := view.NewRegion("browser-header")
	browserBody := view.NewRegion("browser-body")
	toolHeader := view.NewRegion("tool-header")
	control := view.NewRegion("context-control")
	status := view.NewRegion("context-status")

	_ = page.AppendChild(toolRoot)
	_ = page.AppendChild(browserRoot)
	_ = toolRoot.AppendChild(toolHeader)
	_ = toolHeader.AppendChild(control)
	_ = toolHeader.AppendChild(status)
	_ = browserRoot.AppendChild(browserHeader)
	_ = browserRoot.AppendChild(browserBody)

	messageLog = view.NewMessageLog()
	_ = toolRoot.AppendChild(messageLog.Root())

	coordinator = view.NewModeCoordinator(view.Layout{
		ToolRoot:        toolRoot,
		BrowserRoot:     browserRoot,
		BrowserHeader:   browserHeader,
		Control:         control,
		StatusIndicator: status,
	})

	var err error
	renderer, err = view.NewRenderer(0)
	if err != nil {
		return err
	}
	return nil
}

// ProcessInput handles user input from the interactive shell. Backslash
// commands drive work, feedback, and view operations; everything else is a
// message for the active tool.
func ProcessInput(c *ishell.Context) {
	if len(c.RawArgs) == 0 {
		return
	}

	handleInput(c, strings.Join(c.RawArgs, " "))
}

// handleInput routes one line of input: backslash commands to their handlers,
// anything else to the conversation.
func handleInput(c console, rawInput string) {
	rawInput = strings.TrimSpace(rawInput)
	if rawInput == "" {
		return
	}

	if strings.HasPrefix(rawInput, "\\") {
		dispatchCommand(c, rawInput)
		return
	}
	sendMessage(c, rawInput)
}

func dispatchCommand(c console, rawInput string) {
	fields := strings.Fields(rawInput)
	command := strings.TrimPrefix(fields[0], "\\")
	args := fields[1:]

	switch command {
	case "help":
		printHelp(c)
	case "exit":
		c.Stop()
	case "browse":
		toggleBrowser(c)
	case "esc":
		handleEscape(c)
	case "works":
		showWorks(c, strings.Join(args, " "))
	case "more":
		growWorks(c)
	case "attach":
		attachByIndex(c, args, false)
	case "switch":
		attachByIndex(c, args, true)
	case "detach":
		detachWork(c)
	case "create":
		createWork(c, args)
	case "feedback":
		submitFeedback(c, args)
	case "brand":
		showBrand(c)
	case "copy":
		copyLastReply(c)
	case "tool":
		selectTool(c, args)
	case "reset":
		resetConversation(c)
	case "status":
		showStatus(c)
	default:
		c.Println(renderer.RenderToast(fmt.Sprintf("Unknown command \\%s. Try \\help.", command)))
	}
}

func printHelp(c console) {
	c.Println(`StudioShell commands:
  \browse             open or close the work browser
  \works [query]      list recent work (client-side search)
  \more               show more work entries
  \attach <n>         attach a listed work item
  \switch <n>         switch to a listed work item
  \detach             detach the current work item
  \create <bucket> <label>   save new work (brand_assets|listings|transactions)
  \feedback [reason] [note]  send feedback on the last reply
  \brand              show your brand summary
  \copy               copy the last reply to the clipboard
  \tool <id>          switch tool surface
  \status             show tool, brand, and attached work
  \reset              clear the conversation
  \esc                close the top modal, or leave the browser
  \exit               quit`)
}

// sendMessage runs one tool exchange and renders the outcome. Errors surface
// as an assistant-styled entry prefixed "Error: "; they are never fatal.
func sendMessage(c console, message string) {
	conversation, err := conversationService()
	if err != nil {
		c.Println(renderer.RenderToast("The studio is not available right now."))
		return
	}

	reply, sent, err := conversation.Send(message, nil)
	if !sent && err == nil {
		c.Println(renderer.RenderToast("Hold on — still working on the previous message."))
		return
	}

	userEntry := messageLog.Append(studiotypes.RoleUser, message)
	printEntry(c, userEntry)

	var replyEntry *view.Region
	switch {
	case err != nil:
		logger.Error("Message send failed", "error", err)
		replyEntry = messageLog.Append(studiotypes.RoleAssistant, "Error: "+err.Error())
	case reply != "":
		replyEntry = messageLog.Append(studiotypes.RoleAssistant, reply)
	}

	messageLog.Reconcile()
	if replyEntry != nil {
		printEntry(c, replyEntry)
	}
}

func printEntry(c console, entry *view.Region) {
	c.Print(renderer.RenderEntry(messageLog, entry))
}

func toggleBrowser(c console) {
	if coordinator.Mode() == studiotypes.ViewModeTool {
		coordinator.Enter()
		showWorks(c, "")
		return
	}
	coordinator.Exit()
	coordinator.Settle()
	c.Println(renderer.RenderToast("Back to " + GetGlobalContext().ActiveTool().Title + "."))
}

func handleEscape(c console) {
	switch coordinator.HandleEscape() {
	case view.EscapeClosedModal:
		c.Println(renderer.RenderToast("Closed."))
	case view.EscapeExitedBrowser:
		coordinator.Settle()
		c.Println(renderer.RenderToast("Back to " + GetGlobalContext().ActiveTool().Title + "."))
	case view.EscapeIgnored:
	}
}

func showWorks(c console, query string) {
	work, err := workService()
	if err != nil {
		return
	}

	lastQuery = query
	lastVisible = work.VisibleList(query)

	activeKey := ""
	if item, ok := GetGlobalContext().ActiveWork(); ok {
		activeKey = item.Key()
	}
	c.Println(renderer.RenderWorkList(lastVisible, activeKey))
}

func growWorks(c console) {
	work, err := workService()
	if err != nil {
		return
	}
	work.GrowVisible()
	showWorks(c, lastQuery)
}

func attachByIndex(c console, args []string, isSwitch bool) {
	if len(args) == 0 {
		c.Println(renderer.RenderToast("Which one? \\works lists them by number."))
		return
	}
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 1 || index > len(lastVisible) {
		c.Println(renderer.RenderToast("No work item at that number."))
		return
	}

	work, err := workService()
	if err != nil {
		return
	}

	item := lastVisible[index-1].WorkItem
	if isSwitch {
		err = work.Switch(item)
	} else {
		err = work.Attach(item)
	}
	if err != nil {
		c.Println(renderer.RenderToast(err.Error()))
		return
	}
	c.Println(renderer.RenderToast(fmt.Sprintf("Now working on %q.", item.Label)))
}

func detachWork(c console) {
	work, err := workService()
	if err != nil {
		return
	}
	work.Detach()
	c.Println(renderer.RenderToast(services.ToastWorkDetached))
}

func createWork(c console, args []string) {
	if len(args) < 2 {
		c.Println(renderer.RenderToast("Usage: \\create <bucket> <label>"))
		return
	}

	work, err := workService()
	if err != nil {
		return
	}

	bucket := studiotypes.WorkBucket(args[0])
	label := strings.Join(args[1:], " ")

	item, err := work.Create(bucket, label, nil)
	switch {
	case errors.Is(err, services.ErrNotSignedIn):
		c.Println(renderer.RenderToast(services.ToastNotSignedIn))
	case errors.Is(err, services.ErrEndpointUnavailable):
		c.Println(renderer.RenderToast(services.ToastNotAvailable))
	case err != nil:
		c.Println(renderer.RenderToast("Could not save work: " + err.Error()))
	default:
		c.Println(renderer.RenderToast(fmt.Sprintf("Saved and attached %q.", item.Label)))
	}
}

// submitFeedback captures a snapshot, opens the feedback modal, and submits.
// The modal auto-closes only after a successful save.
func submitFeedback(c console, args []string) {
	feedback, err := feedbackService()
	if err != nil {
		return
	}

	snapshot, err := feedback.CaptureSnapshot()
	if err != nil || snapshot.LastAssistantText == "" {
		c.Println(renderer.RenderToast("Nothing to give feedback on yet."))
		return
	}

	reason := studiotypes.ReasonOther
	note := ""
	if len(args) > 0 {
		reason = studiotypes.FeedbackReason(args[0])
		note = strings.Join(args[1:], " ")
	}

	coordinator.OpenModal("feedback")
	c.Println(renderer.RenderToast("Saving feedback…"))

	if err := feedback.Submit(snapshot, reason, note); err != nil {
		c.Println(renderer.RenderToast("Could not save feedback: " + err.Error()))
		return
	}
	coordinator.CloseModal("feedback")
	c.Println(renderer.RenderToast("Saved. Thank you!"))
}

func showBrand(c console) {
	brand, err := brandService()
	if err != nil {
		return
	}

	summary, err := brand.Summary()
	if err != nil {
		c.Println(renderer.RenderToast("Could not load your brand: " + err.Error()))
		return
	}
	if summary == "" {
		c.Println(renderer.RenderToast("No brand details yet. Sign in through your studio to see them."))
		return
	}
	c.Println(summary)
}

func copyLastReply(c console) {
	content, ok := messageLog.LastAssistantContent()
	if !ok {
		c.Println(renderer.RenderToast("No reply to copy yet."))
		return
	}

	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	if clipboardErr != nil {
		c.Println(renderer.RenderToast("Clipboard is not available here."))
		return
	}

	clipboard.Write(clipboard.FmtText, []byte(content))
	c.Println(renderer.RenderToast("Copied."))
}

func selectTool(c console, args []string) {
	ctx := GetGlobalContext()
	if len(args) == 0 {
		c.Println(renderer.RenderToast("Tools: " + strings.Join(ctx.ToolIDs(), ", ")))
		return
	}
	if err := ctx.SetActiveTool(args[0]); err != nil {
		c.Println(renderer.RenderToast(err.Error()))
		return
	}
	c.Println(renderer.RenderToast("Switched to " + ctx.ActiveTool().Title + "."))
}

func resetConversation(c console) {
	conversation, err := conversationService()
	if err != nil {
		return
	}
	conversation.Reset()
	messageLog.Clear()
	c.Println(renderer.RenderToast("Conversation cleared."))
}

func showStatus(c console) {
	ctx := GetGlobalContext()

	var workItem *studiotypes.WorkItem
	if item, ok := ctx.ActiveWork(); ok {
		workItem = &item
	}

	summary := ""
	if brand, err := brandService(); err == nil {
		// Brand lookups are best-effort; the status line works without them.
		if s, err := brand.Summary(); err == nil {
			summary = s
		}
	}

	c.Println(renderer.RenderStatusLine(ctx.ActiveTool(), summary, workItem))
}

func conversationService() (*services.ConversationService, error) {
	svc, err := services.GetGlobalRegistry().GetService("conversation")
	if err != nil {
		return nil, err
	}
	conversation, ok := svc.(*services.ConversationService)
	if !ok {
		return nil, fmt.Errorf("conversation service has unexpected type")
	}
	return conversation, nil
}

func workService() (*services.WorkService, error) {
	svc, err := services.GetGlobalRegistry().GetService("work")
	if err != nil {
		return nil, err
	}
	work, ok := svc.(*services.WorkService)
	if !ok {
		return nil, fmt.Errorf("work service has unexpected type")
	}
	return work, nil
}

func feedbackService() (*services.FeedbackService, error) {
	svc, err := services.GetGlobalRegistry().GetService("feedback")
	if err != nil {
		return nil, err
	}
	feedback, ok := svc.(*services.FeedbackService)
	if !ok {
		return nil, fmt.Errorf("feedback service has unexpected type")
	}
	return feedback, nil
}

func brandService() (*services.BrandService, error) {
	svc, err := services.GetGlobalRegistry().GetService("brand")
	if err != nil {
		return nil, err
	}
	brand, ok := svc.(*services.BrandService)
	if !ok {
		return nil, fmt.Errorf("brand service has unexpected type")
	}
	return brand, nil
}
