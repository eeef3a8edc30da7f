package token

import (
	"encoding/json"
	"io"
)

/* Ответ /login: {"token": "..."} */
type jsonToken struct {
	Token string `json:"token"`
}

func ToJson(raw []byte) ([]byte, error) {
	return json.Marshal(&jsonToken{Token: string(raw)})
}

func FromStream(r io.Reader) ([]byte, error) {
	temp := jsonToken{}
	if err := json.NewDecoder(r).Decode(&temp); err != nil {
		return nil, err
	}
	return []byte(temp.Token), nil
}
