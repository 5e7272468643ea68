package models

type Tag struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name   string `json:"name" gorm:"uniqueIndex;size:200;not null"`
	Colour string `json:"colour" gorm:"uniqueIndex;size:100;not null"`
	Slug   string `json:"slug" gorm:"uniqueIndex;size:200;not null"`
}

func (Tag) TableName() string {
	return "tags"
}
