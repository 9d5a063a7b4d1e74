package model

type JobReturn struct {
	ID        int64  `json:"id"`
	JID       string `json:"jid"`
	MinionID  string `json:"minion_id"`
	Fun       string `json:"fun"`
	Success   bool   `json:"success"`
	Ret       []byte `json:"ret"`
	FullRet   []byte `json:"full_ret"`
	AlterTime int64  `json:"alter_time"`
}

type JobLoad struct {
	JID       string `json:"jid"`
	Payload   []byte `json:"payload"`
	AlterTime int64  `json:"alter_time"`
}
