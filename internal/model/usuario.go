package model

// Roles are fixed; authorization policy does not go beyond these two.
const (
	RolVendedor = "vendedor"
	RolAdmin    = "admin"
)

// AdminUsuario is the seeded account; it cannot be deleted.
const AdminUsuario = "admin"

// Usuario stores terminal users. Clave always holds a bcrypt hash.
type Usuario struct {
	ID      uint   `gorm:"primaryKey"`
	Usuario string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Clave   string `gorm:"type:varchar(100);not null"`
	Rol     string `gorm:"type:varchar(20);not null;default:'vendedor'"`
}

func (Usuario) TableName() string { return "usuarios" }

func (u *Usuario) EsAdmin() bool { return u.Rol == RolAdmin }
