package entities

// TicketCategory is a category that tickets can be opened against. Each
// category grants a set of roles access to its tickets.
type TicketCategory struct {
	// Name is the name of the category. Unique within the guild.
	Name string `json:"name" bson:"name"`

	// Description is shown on the ticket panel.
	Description string `json:"description" bson:"description"`

	// Color is the embed colour used for tickets of this category.
	Color int `json:"color" bson:"color"`

	// RoleIDs are the roles granted access to tickets of this category.
	RoleIDs []string `json:"role_ids" bson:"role_ids"`
}
