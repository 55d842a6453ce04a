package canmsg

// Builders copy the last received instance of a message (the echo) and
// overwrite only the fields this controller owns, so fields it does not
// understand pass through unchanged.

// LaneHUD is the lane/warning part of LKAS11.
type LaneHUD struct {
	SysWarning  bool
	SysState    int
	LeftLane    bool
	RightLane   bool
	LeftDepart  int
	RightDepart int
	LaneModeUSM bool // variants that report lane mode in LKAS11
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func lkas11(echo Signals, counter uint8, applySteer float64, steerReq, enabled bool, hud LaneHUD, bus int) Message {
	v := echo.Clone()
	v["CF_Lkas_LdwsSysState"] = float64(hud.SysState)
	v["CF_Lkas_SysWarning"] = 0
	if hud.SysWarning {
		v["CF_Lkas_SysWarning"] = 3
	}
	v["CF_Lkas_LdwsLHWarning"] = float64(hud.LeftDepart)
	v["CF_Lkas_LdwsRHWarning"] = float64(hud.RightDepart)
	v["CR_Lkas_StrToqReq"] = applySteer
	v["CF_Lkas_ActToi"] = boolf(steerReq)
	v["CF_Lkas_ToiFlt"] = 0
	v["CF_Lkas_MsgCount"] = float64(counter)
	if hud.LaneModeUSM {
		v["CF_Lkas_LdwsActivemode"] = boolf(hud.LeftLane) + 2*boolf(hud.RightLane)
		v["CF_Lkas_LdwsOpt_USM"] = 2
		v["CF_Lkas_FcwOpt_USM"] = 1
		if enabled {
			v["CF_Lkas_FcwOpt_USM"] = 2
		}
		if hud.SysWarning {
			v["CF_Lkas_SysWarning"] = 4
		}
	}
	return Message{Kind: KindLKAS11, Bus: bus, Fields: v}
}

func clu11(echo Signals, tick int, bus int, button Button, speed float64) Message {
	v := echo.Clone()
	v["CF_Clu_CruiseSwState"] = float64(button)
	v["CF_Clu_Vanz"] = speed
	v["CF_Clu_AliveCnt1"] = float64(tick % 0x10)
	return Message{Kind: KindCLU11, Bus: bus, Fields: v}
}

func mdps12(echo Signals, tick int) Message {
	v := echo.Clone()
	v["CF_Mdps_ToiActive"] = 0
	v["CF_Mdps_ToiUnavail"] = 1
	v["CF_Mdps_MsgCount2"] = float64(tick % 0x100)
	return Message{Kind: KindMDPS12, Bus: 0, Fields: v}
}

func scc12(echo Signals, accel float64, enabled bool, counter uint8, sccLive bool) Message {
	v := echo.Clone()
	v["aReqRaw"] = 0
	v["aReqValue"] = 0
	if enabled {
		v["aReqRaw"] = accel
		v["aReqValue"] = accel
	}
	v["CR_VSM_Alive"] = float64(counter)
	if !sccLive {
		v["ACCMode"] = boolf(enabled)
	}
	return Message{Kind: KindSCC12, Bus: 0, Fields: v}
}

func scc11(echo Signals, tick int, enabled bool, setSpeed float64, leadVisible, sccLive bool) Message {
	v := echo.Clone()
	v["AliveCounterACC"] = float64(tick / 2 % 0x10)
	if !sccLive {
		v["MainMode_ACC"] = 1
		v["VSetDis"] = setSpeed
		v["ObjValid"] = boolf(enabled)
		v["ACC_ObjStatus"] = boolf(leadVisible)
	}
	return Message{Kind: KindSCC11, Bus: 0, Fields: v}
}

func scc13(echo Signals) Message {
	return Message{Kind: KindSCC13, Bus: 0, Fields: echo.Clone()}
}

func scc14(echo Signals, enabled bool) Message {
	v := echo.Clone()
	if enabled {
		v["JerkUpperLimit"] = 3.2
		v["JerkLowerLimit"] = 0.1
		v["ComfortBandUpper"] = 0.24
		v["ComfortBandLower"] = 0.24
	}
	return Message{Kind: KindSCC14, Bus: 0, Fields: v}
}

func lfaMFA(enabled bool) Message {
	v := Signals{
		"LFA_Icon_State": 0,
		"LFA_USM":        2,
		"HDA_USM":        2,
	}
	if enabled {
		v["LFA_Icon_State"] = 2
	}
	return Message{Kind: KindLFAHDA, Bus: 0, Fields: v}
}

func ems11(echo Signals, spasActive bool, bus int) Message {
	v := echo.Clone()
	if spasActive {
		v["VS"] = 0
	}
	return Message{Kind: KindEMS11, Bus: bus, Fields: v}
}

func spas11(aliveTick int, state int, angle float64, bus int) Message {
	return Message{Kind: KindSPAS11, Bus: bus, Fields: Signals{
		"CF_Spas_Stat":      float64(state),
		"CF_Spas_TestMode":  0,
		"CR_Spas_StrAngCmd": angle,
		"CF_Spas_BeepAlarm": 0,
		"CF_Spas_Mode_Seq":  2,
		"CF_Spas_AliveCnt":  float64(aliveTick % 0x100),
		"CF_Spas_PasVol":    0,
	}}
}

// spas12 is an all-zero keepalive.
func spas12(bus int) Message {
	return Message{Kind: KindSPAS12, Bus: bus, Fields: Signals{}}
}
