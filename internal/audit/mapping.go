package audit

import "strings"

// ActionResource holds the audit action verb and resource for a governance command.
type ActionResource struct {
	Action   string
	Resource string
}

// commandOverrides names the governance commands whose audit entries use
// domain vocabulary instead of a derived verb.
var commandOverrides = map[string]ActionResource{
	"AddMember":          {Action: "member_added", Resource: "member"},
	"RemoveMember":       {Action: "member_removed", Resource: "member"},
	"ChangeRole":         {Action: "role_changed", Resource: "member"},
	"Leave":              {Action: "member_left", Resource: "member"},
	"TransferOwnership":  {Action: "ownership_transferred", Resource: "team"},
	"Disband":            {Action: "team_disbanded", Resource: "team"},
	"RequestJoin":        {Action: "join_requested", Resource: "join_request"},
	"ResolveJoinRequest": {Action: "join_request_resolved", Resource: "join_request"},
	"Invite":             {Action: "invitation_sent", Resource: "invitation"},
	"ResolveInvitation":  {Action: "invitation_resolved", Resource: "invitation"},
	"RevokeInvitation":   {Action: "invitation_revoked", Resource: "invitation"},
}

// CommandAction returns the audit action and resource for a governance command
// name (e.g. "TransferOwnership"). Commands without an override get a derived
// verb (create, update, list, get) on resource "team"; unknown shapes fall
// back to the lowercase command name.
func CommandAction(command string) ActionResource {
	if ar, ok := commandOverrides[command]; ok {
		return ar
	}
	if command == "" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	return ActionResource{Action: commandToVerb(command), Resource: "team"}
}

func commandToVerb(command string) string {
	switch {
	case strings.HasPrefix(command, "Create"):
		return "create"
	case strings.HasPrefix(command, "Update"):
		return "update"
	case strings.HasPrefix(command, "List"):
		return "list"
	case strings.HasPrefix(command, "Describe"), strings.HasPrefix(command, "Get"):
		return "get"
	default:
		return strings.ToLower(command)
	}
}
