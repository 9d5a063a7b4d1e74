package model

type Event struct {
	ID        int64  `json:"id"`
	Tag       string `json:"tag"`
	Data      []byte `json:"data"`
	MasterID  string `json:"master_id"`
	AlterTime int64  `json:"alter_time"`
}
