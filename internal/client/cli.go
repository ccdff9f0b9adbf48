package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/validity"
)

// Коды завершения консольного клиента.
const (
	ExitOK          = 0 // доступ разрешён
	ExitDenied      = 1 // отказ: неверные данные или недействующая подписка
	ExitUnavailable = 2 // сервер недоступен или ответ не разобран
)

// CLI — интерактивный сценарий входа: запрос учётных данных,
// вызов API и печать решения.
type CLI struct {
	api *APIClient
	in  *bufio.Reader
	out io.Writer

	// readPassword подменяется в тестах, по умолчанию скрытый ввод с терминала.
	readPassword func() (string, error)
}

// NewCLI создает новый экземпляр CLI.
func NewCLI(api *APIClient, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		api: api,
		in:  bufio.NewReader(in),
		out: out,
		readPassword: func() (string, error) {
			raw, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return "", err
			}
			return string(raw), nil
		},
	}
}

// Run выполняет сценарий входа и возвращает код завершения процесса.
func (c *CLI) Run(ctx context.Context) int {
	if err := c.api.CheckStatus(ctx); err != nil {
		fmt.Fprintln(c.out, "Error: cannot reach the server. Is it running?")
		return ExitUnavailable
	}

	fmt.Fprint(c.out, "Username: ")
	username, err := c.in.ReadString('\n')
	if err != nil {
		fmt.Fprintln(c.out, "Error: failed to read username")
		return ExitUnavailable
	}
	username = strings.TrimSpace(username)

	fmt.Fprint(c.out, "Password: ")
	password, err := c.readPassword()
	fmt.Fprintln(c.out)
	if err != nil {
		fmt.Fprintln(c.out, "Error: failed to read password")
		return ExitUnavailable
	}

	result, err := c.api.Authenticate(ctx, username, password)
	if err != nil {
		fmt.Fprintln(c.out, "Error: request failed:", err)
		return ExitUnavailable
	}

	return c.render(result)
}

func (c *CLI) render(result *Result) int {
	switch {
	case result.StatusCode == http.StatusOK && result.Success:
		fmt.Fprintln(c.out, "Access granted:", result.Message)
		if result.User != nil {
			fmt.Fprintf(c.out, "Logged in as %s\n", result.User.Username)
			fmt.Fprintln(c.out, "Subscription:", renderExpiry(result.User, time.Now()))
		}
		return ExitOK
	case result.StatusCode == http.StatusForbidden:
		fmt.Fprintln(c.out, "Access denied:", result.Message)
		if result.User != nil {
			fmt.Fprintln(c.out, "Subscription:", renderExpiry(result.User, time.Now()))
		}
		return ExitDenied
	case result.StatusCode == http.StatusUnauthorized,
		result.StatusCode == http.StatusBadRequest:
		fmt.Fprintln(c.out, "Access denied:", result.Message)
		return ExitDenied
	default:
		fmt.Fprintln(c.out, "Error:", result.Message)
		return ExitUnavailable
	}
}

// renderExpiry печатает срок подписки в днях относительно сегодняшней даты.
func renderExpiry(user *response.UserProfile, today time.Time) string {
	if user.Expiry == nil {
		return "Never expires"
	}
	expiry, err := time.Parse(time.DateOnly, *user.Expiry)
	if err != nil {
		return *user.Expiry
	}

	days := validity.DaysLeft(expiry, today)
	switch {
	case days > 0:
		return fmt.Sprintf("%d days remaining", days)
	case days == 0:
		return "Expires today!"
	default:
		return fmt.Sprintf("Expired %d days ago", -days)
	}
}
