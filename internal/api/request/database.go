package request

type CreateDatabase struct {
	Name           string `json:"name"`
	Type           string `json:"type" validate:"required,oneof=postgresql mongo"`
	Host           string `json:"host" validate:"required"`
	Port           int    `json:"port" validate:"required,min=1,max=65535"`
	Username       string `json:"username" validate:"required"`
	Password       string `json:"password" validate:"required"`
	DatabaseName   string `json:"databaseName" validate:"required"`
	BackupInterval string `json:"backupInterval" validate:"required,oneof=HOURLY DAILY WEEKLY MONTHLY"`
}

type UpdateDatabase struct {
	Name           *string `json:"name"`
	Type           *string `json:"type" validate:"omitempty,oneof=postgresql mongo"`
	Host           *string `json:"host"`
	Port           *int    `json:"port" validate:"omitempty,min=1,max=65535"`
	Username       *string `json:"username"`
	Password       *string `json:"password"`
	DatabaseName   *string `json:"databaseName"`
	BackupInterval *string `json:"backupInterval" validate:"omitempty,oneof=HOURLY DAILY WEEKLY MONTHLY"`
}
