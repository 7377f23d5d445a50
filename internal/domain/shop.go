package domain

// Shop — имя оператора, привязанное к кабинету (pcbid).
type Shop struct {
	PCBID  string `gorm:"primaryKey;column:pcbid"`
	OpName string
}

// PaseliAccount — баланс электронной валюты по карте.
type PaseliAccount struct {
	CardID     string `gorm:"primaryKey"`
	Balance    int
	TotalSpent int
}
