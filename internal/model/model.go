package model

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

/* Пароль хранится только в виде bcrypt хэша, наружу не сериализуется */
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

type Student struct {
	ID              int64   `json:"id"`
	Nombre          string  `json:"nombre"`
	Apellido        string  `json:"apellido"`
	Email           *string `json:"email"`
	FechaNacimiento *Date   `json:"fecha_nacimiento"`
}

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) *Date {
	return &Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("date must be a JSON string")
	}
	raw := string(data[1 : len(data)-1])
	/* Принимаем и полную RFC3339 запись с нулевым временем */
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return err
		}
	}
	d.Time = NewDate(t).Time
	return nil
}
