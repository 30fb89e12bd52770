package dynamo

// Config holds table names for the DynamoDB store.
type Config struct {
	// UsersTable is keyed by "id".
	// Default: "users"
	UsersTable string

	// ItemsTable is keyed by "id".
	// Default: "items"
	ItemsTable string

	// OwnerItemsTable mirrors ItemsTable keyed by "user_id" and "id", so an
	// owner's items can be listed with a consistent read.
	// Default: "owner_items"
	OwnerItemsTable string

	// ConstraintsTable holds one row per unique username/email, keyed by "pk".
	// Default: "unique_constraints"
	ConstraintsTable string
}

// DefaultConfig returns the table names used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		UsersTable:       "users",
		ItemsTable:       "items",
		OwnerItemsTable:  "owner_items",
		ConstraintsTable: "unique_constraints",
	}
}

// validate fills in defaults for empty fields.
func (c *Config) validate() {
	def := DefaultConfig()
	if c.UsersTable == "" {
		c.UsersTable = def.UsersTable
	}
	if c.ItemsTable == "" {
		c.ItemsTable = def.ItemsTable
	}
	if c.OwnerItemsTable == "" {
		c.OwnerItemsTable = def.OwnerItemsTable
	}
	if c.ConstraintsTable == "" {
		c.ConstraintsTable = def.ConstraintsTable
	}
}
