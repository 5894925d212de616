package state

import (
	"database/sql"
	"math/big"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/database"
	logger "github.com/sirupsen/logrus"
)

func RandBurnEvent() *agreement.BurnEvent {
	return &agreement.BurnEvent{
		Height:      uint64(common.RandBigInt(2).Int64()),
		Destination: common.RandBytes(20),
		Amount:      big.NewInt(500),
	}
}

func getMemoryDB() *sql.DB {
	db, err := database.Open(database.MemoryDSN)
	if err != nil {
		logger.Fatal(err)
	}
	return db
}
