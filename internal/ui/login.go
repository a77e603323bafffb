package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rivo/tview"

	"github.com/jlcastillov/crm-console/internal/api"
	"github.com/jlcastillov/crm-console/internal/auth"
)

// ErrLoginAborted is returned when the user quits the login screen.
var ErrLoginAborted = errors.New("login aborted")

// RunLogin shows the login form and returns an authenticated session. It
// runs its own tview application; the main console starts afterwards.
func RunLogin(ctx context.Context, client api.Client, logger *log.Logger) (*auth.Session, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[UI] ", log.LstdFlags)
	}

	theme := themeDark()
	app := tview.NewApplication()

	var session *auth.Session
	var loginErr error

	status := tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)

	form := tview.NewForm()
	form.AddInputField("Usuario", "", 30, nil, nil)
	form.AddPasswordField("Contraseña", "", 30, '*', nil)
	form.AddButton("Ingresar", func() {
		login := form.GetFormItem(0).(*tview.InputField).GetText()
		password := form.GetFormItem(1).(*tview.InputField).GetText()

		authCtx, cancel := context.WithTimeout(ctx, 4*time.Second)
		defer cancel()

		res := client.Authenticate(authCtx, login, password)
		if !res.Success {
			logger.Printf("Login failed for %q: %s", login, res.ErrorCode)
			status.SetText(fmt.Sprintf("[%s]%s[-]", theme.TagError, res.ErrorMessage))
			return
		}
		session = auth.NewSession(res.Data)
		app.Stop()
	})
	form.AddButton("Salir", func() {
		loginErr = ErrLoginAborted
		app.Stop()
	})
	form.SetBorder(true)
	form.SetTitle(" CRM Console ")
	form.SetTitleAlign(tview.AlignCenter)
	form.SetButtonsAlign(tview.AlignCenter)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(modalWrap(form, 50, 11), 11, 0, true).
		AddItem(status, 1, 0, false).
		AddItem(nil, 0, 1, false)

	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	if err := app.SetRoot(layout, true).Run(); err != nil {
		return nil, err
	}
	if loginErr != nil {
		return nil, loginErr
	}
	if session == nil {
		return nil, ErrLoginAborted
	}
	return session, nil
}
