package models

type Follow struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_user_author" json:"user_id"`
	AuthorID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_author" json:"author_id"`

	// Associations
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Follow) TableName() string {
	return "follows"
}
