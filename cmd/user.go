// BridgeUser presents an entity that
// 1) Holds user credentials (ed25519 seed, and a dev custodian key if any)
// 2) Perform requests. (mint to self, burn to a btc address)
// 3) Monitor user's status. (balance, nonce, burn events)

package cmd

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/auth"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/multisig"
	"github.com/TEENet-io/renbridge-go/reporter"
)

var ErrNoCustodianKey = errors.New("no custodian key configured, cannot sign mints")

type BridgeUserConfig struct {
	HttpIp   string // bridge server ip
	HttpPort string // bridge server port

	UserSeed string // hex, 32-byte ed25519 seed of the user's account

	// Dev only: the custodian key the server trusts. Leave empty when the
	// real custodian network signs mints.
	CustodianPriv string // hex, 32 bytes
	AssetId       string // hex, 32 bytes

	BtcChainConfig *chaincfg.Params // regtest, testnet, mainnet? for burn destinations
}

type BridgeUser struct {
	Reader       *reporter.HttpReader
	Signer       *auth.Signer
	Custodian    *multisig.LocalEcdsaSigner // nil if not configured
	AssetId      [32]byte
	MyUserConfig *BridgeUserConfig
}

func NewBridgeUser(buc *BridgeUserConfig) (*BridgeUser, error) {
	seed, err := common.HexStrToBytes32(buc.UserSeed)
	if err != nil {
		logger.Error("cannot decode user seed")
		return nil, err
	}
	signer, err := auth.NewSigner(seed[:])
	if err != nil {
		return nil, err
	}

	u := &BridgeUser{
		Reader:       reporter.NewHttpReader(buc.HttpIp, buc.HttpPort),
		Signer:       signer,
		MyUserConfig: buc,
	}

	if buc.CustodianPriv != "" {
		priv, err := common.HexStrToBytes32(buc.CustodianPriv)
		if err != nil {
			logger.Error("cannot decode custodian private key")
			return nil, err
		}
		if u.Custodian, err = multisig.NewLocalEcdsaSigner(priv[:]); err != nil {
			return nil, err
		}
		if u.AssetId, err = common.HexStrToBytes32(buc.AssetId); err != nil {
			logger.Error("cannot decode asset id")
			return nil, err
		}
	}

	return u, nil
}

func (u *BridgeUser) Account() agreement.AccountId {
	return u.Signer.Account()
}

func (u *BridgeUser) GetBalance() (*reporter.JSONBalance, error) {
	return u.Reader.GetBalance(u.Account())
}

// RequestMint has the dev custodian sign a claim to the user and submits it.
func (u *BridgeUser) RequestMint(amount *big.Int) (*agreement.MintClaim, *reporter.JSONAdmission, error) {
	if u.Custodian == nil {
		return nil, nil, ErrNoCustodianKey
	}

	claim, err := u.Custodian.NewMintClaim(u.Account(), common.RandBytes32(), amount, u.AssetId, common.RandBytes32())
	if err != nil {
		return nil, nil, err
	}
	res, err := u.Reader.SubmitMint(claim)
	return claim, res, err
}

// BurnToBtc burns amount for release to a btc address.
func (u *BridgeUser) BurnToBtc(btcAddress string, amount *big.Int) (agreement.BurnEventId, error) {
	dest, ok := common.BtcBurnDestination(btcAddress, u.MyUserConfig.BtcChainConfig)
	if !ok {
		return 0, fmt.Errorf("invalid btc address %q", btcAddress)
	}

	balance, err := u.GetBalance()
	if err != nil {
		return 0, err
	}

	req, err := u.Signer.SignBurn(balance.Nonce, dest, amount)
	if err != nil {
		return 0, err
	}
	return u.Reader.SubmitBurn(req)
}

func (u *BridgeUser) GetBurnEvent(id agreement.BurnEventId) (*agreement.JSONBurnEvent, error) {
	return u.Reader.GetBurnEvent(id)
}

func (u *BridgeUser) IsMinted(claim *agreement.MintClaim) (bool, error) {
	return u.Reader.IsConsumed(claim.Signature)
}
