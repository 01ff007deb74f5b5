package command

// Command names.
const (
	Login    = "login"
	Register = "register"
	SetField = "field"
	Submit   = "submit"
	Toggle   = "toggle"
	User     = "user"
	Logout   = "logout"
	Goto     = "goto"
	Show     = "show"
	Set      = "set"
	Help     = "help"
	Exit     = "exit"
	Quit     = "quit"
)

var (
	emailField    = Field{Name: "email", Aliases: []string{"mail"}, Prompt: "email", Required: true}
	passwordField = Field{Name: "password", Aliases: []string{"pass", "pwd"}, Prompt: "password", Secret: true, Required: true}
	usernameField = Field{Name: "Username", Aliases: []string{"user", "name"}, Prompt: "username", Required: true}
)

// Ordered returns the REPL commands in help order.
func Ordered() []Command {
	return []Command{
		{
			Name:    Login,
			Usage:   "login [email=<email>] [password=<password>]",
			Summary: "open the login screen, fill it and submit",
			Fields:  []Field{emailField, passwordField},
		},
		{
			Name:    Register,
			Usage:   "register [username=<name>] [email=<email>] [password=<password>]",
			Summary: "open the registration screen, fill it and submit",
			Fields:  []Field{usernameField, emailField, passwordField},
		},
		{
			Name:    SetField,
			Usage:   "field <username|email|password> <value>",
			Summary: "set one field on the current form",
			MinArgs: 2,
		},
		{Name: Submit, Usage: "submit", Summary: "submit the current form"},
		{
			Name:    Toggle,
			Usage:   "toggle secret",
			Summary: "show or mask the password",
			MinArgs: 1,
		},
		{Name: User, Usage: "user", Summary: "open the user screen"},
		{Name: Logout, Usage: "logout", Summary: "forget the stored token"},
		{
			Name:    Goto,
			Usage:   "goto </login|/register|/user|/logout>",
			Summary: "navigate to a screen",
			MinArgs: 1,
		},
		{
			Name:    Show,
			Usage:   "show token|config|status|profile",
			Summary: "inspect client state",
			MinArgs: 1,
		},
		{
			Name:    Set,
			Usage:   "set base <url> | set timeout <duration>",
			Summary: "change the API base URL or timeout",
			MinArgs: 2,
		},
		{Name: Help, Usage: "help", Summary: "list commands"},
		{Name: Exit, Usage: "exit", Summary: "leave the portal"},
	}
}

// Registry returns all REPL commands keyed by name.
func Registry() map[string]Command {
	commands := map[string]Command{}
	for _, cmd := range Ordered() {
		commands[cmd.Name] = cmd
	}
	commands[Quit] = commands[Exit]
	return commands
}
