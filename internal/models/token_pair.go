package models

import "time"

// TokenPair — пара токенов, выдаваемая при входе и обновлении сессии.
//
// Описание:
//   - AccessToken — короткоживущий JWT для доступа к API (минуты);
//   - RefreshToken — долгоживущий JWT для выпуска новой пары (дни);
//     его текущее значение зеркалируется в слот аккаунта, поэтому
//     предъявление устаревшего значения детектируется как replay;
//   - AccessExpiresAt — момент истечения access-токена (UTC).
type TokenPair struct {
	AccessToken     string    `json:"accessToken"`
	RefreshToken    string    `json:"refreshToken"`
	AccessExpiresAt time.Time `json:"-"`
}
