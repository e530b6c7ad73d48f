package request

// RestorePostgres is the body of the restore trigger. Field names follow
// the public API contract.
type RestorePostgres struct {
	NewDbHost     string `json:"newDbHost" validate:"required"`
	NewDbPort     int    `json:"newDbPort" validate:"required,min=1,max=65535"`
	NewDbPassword string `json:"newDbPassword"`
	NewDbName     string `json:"newDbName" validate:"required"`
	NewDbUserName string `json:"newDbUserName" validate:"required"`
}
